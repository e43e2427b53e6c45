package handlers

import (
	"net/http"
	"testing"
	"time"
)

func offerBody(start, end time.Time) map[string]interface{} {
	return map[string]interface{}{
		"title":         "Lunch deal",
		"description":   "Weekdays only",
		"discountType":  "percentage",
		"discountValue": 15,
		"startDate":     start.Format(time.RFC3339),
		"endDate":       end.Format(time.RFC3339),
	}
}

func TestPublicOffersHideExpiredAndInactive(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.seedOffer(t, "Current", now.Add(-time.Hour), now.Add(time.Hour), true)
	env.seedOffer(t, "Upcoming", now.Add(time.Hour), now.Add(48*time.Hour), true)
	env.seedOffer(t, "Expired", now.Add(-48*time.Hour), now.Add(-time.Hour), true)
	env.seedOffer(t, "Paused", now.Add(-time.Hour), now.Add(time.Hour), false)

	list := parseResponseArray(env.serve(jsonRequest("GET", "/api/offers", nil)))
	if len(list) != 2 {
		t.Fatalf("expected 2 public offers, got %d: %v", len(list), list)
	}
	for _, item := range list {
		o := item.(map[string]interface{})
		switch o["title"] {
		case "Current":
			if o["status"] != "active" {
				t.Errorf("expected current offer active, got %v", o["status"])
			}
		case "Upcoming":
			if o["status"] != "upcoming" {
				t.Errorf("expected future offer upcoming, got %v", o["status"])
			}
		default:
			t.Errorf("unexpected offer %v", o["title"])
		}
	}
}

func TestAdminOffersIncludeExpiredStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()
	env.seedOffer(t, "Expired", now.Add(-48*time.Hour), now.Add(-time.Hour), true)

	list := parseResponseArray(env.serve(authRequest("GET", "/api/admin/offers", nil, admin)))
	if len(list) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(list))
	}
	o := list[0].(map[string]interface{})
	if o["status"] != "expired" || o["isActive"] != true {
		t.Errorf("expected stored isActive kept and status expired, got %v", o)
	}
}

func TestCreateOffer(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()

	w := env.serve(authRequest("POST", "/api/admin/offers", offerBody(now, now.Add(72*time.Hour)), admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["id"] == "" || resp["status"] != "active" || resp["isActive"] != true {
		t.Errorf("unexpected offer %v", resp)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()

	backwards := offerBody(now, now.Add(-time.Hour))
	tooMuch := offerBody(now, now.Add(time.Hour))
	tooMuch["discountValue"] = 150
	badType := offerBody(now, now.Add(time.Hour))
	badType["discountType"] = "bogo"
	noTitle := offerBody(now, now.Add(time.Hour))
	delete(noTitle, "title")

	cases := map[string]map[string]interface{}{
		"end before start": backwards,
		"percentage > 100": tooMuch,
		"unknown type":     badType,
		"missing title":    noTitle,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if w := env.serve(authRequest("POST", "/api/admin/offers", body, admin)); w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestFixedOfferAboveHundredIsAllowed(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()
	body := offerBody(now, now.Add(time.Hour))
	body["discountType"] = "fixed"
	body["discountValue"] = 150

	if w := env.serve(authRequest("POST", "/api/admin/offers", body, admin)); w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateOffer(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()
	o := env.seedOffer(t, "Old", now.Add(-time.Hour), now.Add(time.Hour), true)

	body := offerBody(now, now.Add(time.Hour))
	body["title"] = "Renamed"
	body["isActive"] = false
	w := env.serve(authRequest("PUT", "/api/admin/offers/"+o.ID, body, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["title"] != "Renamed" || resp["isActive"] != false {
		t.Errorf("unexpected offer %v", resp)
	}

	if w := env.serve(authRequest("PUT", "/api/admin/offers/ghost", body, admin)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown offer, got %d", w.Code)
	}
}

func TestDeleteOffer(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	now := time.Now()
	o := env.seedOffer(t, "Bye", now.Add(-time.Hour), now.Add(time.Hour), true)

	if w := env.serve(authRequest("DELETE", "/api/admin/offers/"+o.ID, nil, admin)); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if list := parseResponseArray(env.serve(authRequest("GET", "/api/admin/offers", nil, admin))); len(list) != 0 {
		t.Errorf("expected no offers, got %d", len(list))
	}
}
