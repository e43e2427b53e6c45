package handlers

import (
	"net/http"
	"testing"
	"time"
)

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	b, managerToken := env.seedManager(t, "Downtown")
	_, customer := env.seedCustomer(t, "buyer@test.com")
	p := env.seedProduct(t, "Burger", 10, true)
	env.seedProduct(t, "Pie", 5, false)
	now := time.Now()
	env.seedOffer(t, "Live", now.Add(-time.Hour), now.Add(time.Hour), true)
	env.seedOffer(t, "Gone", now.Add(-48*time.Hour), now.Add(-time.Hour), true)

	env.placeOrder(t, customer, b.ID, p)
	cancelled := env.placeOrder(t, customer, b.ID, p)
	env.serve(authRequest("PUT", "/api/branch/orders/"+cancelled["id"].(string)+"/status", map[string]string{"status": "cancelled"}, managerToken))

	w := env.serve(authRequest("GET", "/api/admin/dashboard", nil, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	want := map[string]float64{
		"branches":      1,
		"products":      2,
		"users":         3,
		"customers":     1,
		"orders":        2,
		"pendingOrders": 1,
		"revenue":       10,
		"activeOffers":  1,
	}
	for key, v := range want {
		if resp[key] != v {
			t.Errorf("%s: expected %v, got %v", key, v, resp[key])
		}
	}
}

func TestBranchDashboard(t *testing.T) {
	env := newTestEnv(t)
	b, token := env.seedManager(t, "Mine")
	_, customer := env.seedCustomer(t, "buyer@test.com")
	burger := env.seedProduct(t, "Burger", 10, true)
	env.seedProduct(t, "Fries", 3, true)

	env.serve(authRequest("POST", "/api/branch/inventory/"+burger.ID, stockBody(3, "add", ""), token))
	env.serve(authRequest("POST", "/api/branch/employees", employeeBody("Sam", "chef"), token))
	inactive := employeeBody("Alex", "waiter")
	inactive["status"] = "inactive"
	env.serve(authRequest("POST", "/api/branch/employees", inactive, token))
	for _, r := range []int{5, 3} {
		env.serve(authRequest("POST", "/api/branches/"+b.ID+"/reviews", map[string]interface{}{"rating": r}, customer))
	}
	env.placeOrder(t, customer, b.ID, burger)

	w := env.serve(authRequest("GET", "/api/branch/dashboard", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["branchId"] != b.ID || resp["totalOrders"] != float64(1) || resp["pendingOrders"] != float64(1) {
		t.Errorf("unexpected order figures %v", resp)
	}
	if resp["employees"] != float64(2) || resp["activeEmployees"] != float64(1) {
		t.Errorf("unexpected employee figures %v / %v", resp["employees"], resp["activeEmployees"])
	}
	if resp["reviews"] != float64(2) || resp["averageRating"] != float64(4) {
		t.Errorf("unexpected review figures %v / %v", resp["reviews"], resp["averageRating"])
	}
	inv := resp["inventory"].(map[string]interface{})
	if inv["totalUnits"] != float64(3) || inv["lowStock"] != float64(1) || inv["outOfStock"] != float64(1) {
		t.Errorf("unexpected inventory summary %v", inv)
	}
}
