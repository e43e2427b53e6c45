package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/models"

	"github.com/gin-gonic/gin"
)

func branchBody(email string) map[string]string {
	return map[string]string{
		"branchName":  "Riverside",
		"managerName": "Mia Manager",
		"email":       email,
		"password":    "password123",
		"phone":       "555-0101",
		"address":     "12 River Rd",
		"city":        "Springfield",
	}
}

func TestCreateBranchPairsManager(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)

	w := env.serve(authRequest("POST", "/api/admin/branches", branchBody("mia@test.com"), token))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	branchID := resp["id"].(string)
	managerID := resp["managerId"].(string)
	if resp["isActive"] != true {
		t.Error("expected new branch to be active")
	}
	if resp["totalOrders"] != float64(0) || resp["totalRevenue"] != float64(0) {
		t.Errorf("expected zero aggregates, got %v / %v", resp["totalOrders"], resp["totalRevenue"])
	}

	var manager models.User
	if err := env.store.Get(context.Background(), docstore.Doc(docstore.Users, managerID), &manager); err != nil {
		t.Fatalf("expected manager profile: %v", err)
	}
	if manager.Role != models.RoleBranchManager || manager.BranchID != branchID {
		t.Errorf("unexpected manager profile %+v", manager)
	}

	login := env.serve(jsonRequest("POST", "/api/auth/login", map[string]string{"email": "mia@test.com", "password": "password123"}))
	if login.Code != http.StatusOK {
		t.Fatalf("expected manager to sign in, got %d: %s", login.Code, login.Body.String())
	}
}

func TestCreateBranchDuplicateManagerEmail(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	env.seedCustomer(t, "taken@test.com")

	w := env.serve(authRequest("POST", "/api/admin/branches", branchBody("taken@test.com"), token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateBranchFailureFreesManagerEmail(t *testing.T) {
	store := docstore.NewMemoryStore()
	provider := auth.NewLocalProvider(store)
	h := &BranchHandler{Store: brokenProfiles{Store: store}, Provider: provider}
	r := gin.New()
	r.POST("/branches", h.CreateBranch)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/branches", branchBody("mia@test.com")))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := provider.SignUp(context.Background(), "mia@test.com", "password123"); err != nil {
		t.Errorf("manager email should be free after the failed branch, got %v", err)
	}
}

func TestCreateBranchRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedCustomer(t, "cust@test.com")

	w := env.serve(authRequest("POST", "/api/admin/branches", branchBody("x@test.com"), token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestListActiveBranchesIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.seedBranch(t, "Open")
	closed := env.seedBranch(t, "Closed")
	if err := env.store.Merge(context.Background(), docstore.Doc(docstore.Branches, closed.ID), map[string]any{"isActive": false}); err != nil {
		t.Fatal(err)
	}

	w := env.serve(jsonRequest("GET", "/api/branches", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	list := parseResponseArray(w)
	if len(list) != 1 {
		t.Fatalf("expected 1 active branch, got %d", len(list))
	}
	if list[0].(map[string]interface{})["branchName"] != "Open" {
		t.Errorf("unexpected branch %v", list[0])
	}

	admin := env.seedAdmin(t)
	if all := parseResponseArray(env.serve(authRequest("GET", "/api/admin/branches", nil, admin))); len(all) != 2 {
		t.Errorf("expected admin to see 2 branches, got %d", len(all))
	}
}

func TestUpdateBranch(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	b := env.seedBranch(t, "Old Name")

	w := env.serve(authRequest("PUT", "/api/admin/branches/"+b.ID, map[string]interface{}{"branchName": "New Name", "isActive": false}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["branchName"] != "New Name" || resp["isActive"] != false {
		t.Errorf("unexpected branch %v", resp)
	}
	if resp["city"] != "Springfield" {
		t.Errorf("expected untouched fields to survive, got city %v", resp["city"])
	}
}

func TestUpdateBranchNoFields(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	b := env.seedBranch(t, "Branch")

	w := env.serve(authRequest("PUT", "/api/admin/branches/"+b.ID, map[string]interface{}{}, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetBranchNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)

	w := env.serve(authRequest("GET", "/api/admin/branches/missing", nil, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestDeleteBranchDisablesManager(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	b, managerToken := env.seedManager(t, "Doomed")

	if w := env.serve(authRequest("GET", "/api/branch/inventory", nil, managerToken)); w.Code != http.StatusOK {
		t.Fatalf("expected manager access before delete, got %d", w.Code)
	}

	w := env.serve(authRequest("DELETE", "/api/admin/branches/"+b.ID, nil, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var manager models.User
	if err := env.store.Get(context.Background(), docstore.Doc(docstore.Users, b.ManagerID), &manager); err != nil {
		t.Fatal(err)
	}
	if !manager.Disabled || manager.BranchID != "" {
		t.Errorf("expected manager to be disabled and detached, got %+v", manager)
	}
	if w := env.serve(authRequest("GET", "/api/branch/inventory", nil, managerToken)); w.Code != http.StatusForbidden {
		t.Errorf("expected disabled manager to be forbidden, got %d", w.Code)
	}
	if w := env.serve(authRequest("GET", "/api/admin/branches/"+b.ID, nil, admin)); w.Code != http.StatusNotFound {
		t.Errorf("expected branch to be gone, got %d", w.Code)
	}
}
