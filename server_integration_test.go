package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portal/ledger"
	"portal/models"
	"portal/pkg/blob"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	initDB()
	tmp := t.TempDir()
	blobs, err := blob.NewLocalStore(tmp)
	if err != nil {
		t.Fatal(err)
	}
	r := gin.Default()
	setupRoutes(r, ledger.New(db, blobs))
	return r
}

// seedAccount inserts an account with known credentials directly.
func seedAccount(t *testing.T, role models.Role) (email, password string) {
	t.Helper()
	email = fmt.Sprintf("%s_%s@test.example", role, uuid.NewString())
	password = "secret123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	acc := models.Account{
		ID:           "t_" + uuid.NewString(),
		Email:        email,
		DisplayName:  string(role),
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed %s account: %v", role, err)
	}
	return email, password
}

func loginAs(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(body), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

func applicationBody(t *testing.T, email string) *bytes.Buffer {
	t.Helper()
	form := map[string]string{
		"fullName": "Flow Tester", "email": email,
		"phoneNumber": "0123456789", "address": "1 Flow Way", "country": "NG",
		"stateProvince": "Lagos", "passportNumber": "A99", "dateOfBirth": "2001-02-03",
		"secondarySchoolName": "Flow High", "secondarySchoolGrade": "A",
		"countryApplyingFor": "HU", "fundingType": "self", "referralSource": "web",
	}
	body, _ := json.Marshal(form)
	return bytes.NewBuffer(body)
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register applicant
	email := "applicant_" + uuid.NewString() + "@test.example"
	regBody, _ := json.Marshal(map[string]string{"email": email, "name": "Flow Tester", "password": "secret123"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Login
	token := loginAs(t, r, email, "secret123")

	// 3. Submit application
	resp = performRequest(r, http.MethodPost, "/applications", applicationBody(t, email), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("submit failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var app map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &app)
	appID, _ := app["ID"].(string)
	if appID == "" {
		t.Fatalf("no application id in response: %s", resp.Body.String())
	}
	if status, _ := app["Status"].(string); status != "pending" {
		t.Fatalf("fresh application status = %q, want pending", status)
	}

	// 4. List own applications
	resp = performRequest(r, http.MethodGet, "/applications", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list applications failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Fees materialize on first read: expect the four fixed kinds
	resp = performRequest(r, http.MethodGet, "/applications/"+appID+"/fees", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list fees failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var fees []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &fees)
	if len(fees) != 4 {
		t.Fatalf("fees = %d, want 4: %s", len(fees), resp.Body.String())
	}
	feeID, _ := fees[0]["ID"].(string)

	// 6. Upload a receipt (multipart)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("file", "proof.pdf")
	_, _ = w.Write([]byte("PDF CONTENT"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/fees/"+feeID+"/receipts", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("upload receipt failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Upload a supporting document
	buf = &bytes.Buffer{}
	mw = multipart.NewWriter(buf)
	w, _ = mw.CreateFormFile("file", "transcript.pdf")
	_, _ = w.Write([]byte("TRANSCRIPT"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/applications/"+appID+"/documents", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("upload document failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. Applicant may not change fee status
	patch, _ := json.Marshal(map[string]string{"status": "paid"})
	resp = performRequest(r, http.MethodPatch, "/fees/"+feeID, bytes.NewBuffer(patch), token, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for applicant fee update got %d body=%s", resp.Code, resp.Body.String())
	}

	// 9. Staff approves the application
	staffEmail, staffPass := seedAccount(t, models.RoleStaff)
	staffToken := loginAs(t, r, staffEmail, staffPass)
	statusBody, _ := json.Marshal(map[string]string{"status": "approved"})
	resp = performRequest(r, http.MethodPatch, "/applications/"+appID+"/status", bytes.NewBuffer(statusBody), staffToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("update status failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/applications/"+appID, nil, staffToken, "")
	if resp.Code != 200 {
		t.Fatalf("get application failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var approved map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &approved)
	if status, _ := approved["Status"].(string); status != "approved" {
		t.Fatalf("status = %q, want approved", status)
	}

	// 10. Staff updates the fee
	resp = performRequest(r, http.MethodPatch, "/fees/"+feeID, bytes.NewBuffer(patch), staffToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("staff fee update failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 11. Staff exports the bundle
	resp = performRequest(r, http.MethodGet, "/applications/"+appID+"/export", nil, staffToken, "")
	if resp.Code != 200 {
		t.Fatalf("export failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 12. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/applications", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}
}

func TestRoleManagementFlow(t *testing.T) {
	r := setupTestServer(t)

	superEmail, superPass := seedAccount(t, models.RoleSuperStaff)
	superToken := loginAs(t, r, superEmail, superPass)

	// provision a staff account
	body, _ := json.Marshal(map[string]string{
		"email": "newstaff_" + uuid.NewString() + "@test.example",
		"name":  "New Staff", "password": "secret123", "role": "staff",
	})
	resp := performRequest(r, http.MethodPost, "/accounts", bytes.NewBuffer(body), superToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("provision failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	staffID, _ := created["id"].(string)

	// elevate the new staff to superStaff
	roleBody, _ := json.Marshal(map[string]string{"role": "superStaff"})
	resp = performRequest(r, http.MethodPatch, "/accounts/"+staffID+"/role", bytes.NewBuffer(roleBody), superToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("role change failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// a second change to the now-superStaff target must be refused
	demote, _ := json.Marshal(map[string]string{"role": "applicant"})
	resp = performRequest(r, http.MethodPatch, "/accounts/"+staffID+"/role", bytes.NewBuffer(demote), superToken, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 altering another superStaff got %d body=%s", resp.Code, resp.Body.String())
	}

	// changing one's own role must be refused
	meResp := performRequest(r, http.MethodGet, "/me", nil, superToken, "")
	var me map[string]any
	_ = json.Unmarshal(meResp.Body.Bytes(), &me)
	myID, _ := me["id"].(string)
	resp = performRequest(r, http.MethodPatch, "/accounts/"+myID+"/role", bytes.NewBuffer(demote), superToken, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 changing own role got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
