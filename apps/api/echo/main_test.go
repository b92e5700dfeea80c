package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/caplc/backend/apps/api/echo"
	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/testutil"
)

func setup(t *testing.T) (*Server, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv()
	return newServer(env), env
}

func newServer(env *testutil.Env) *Server {
	return NewServer(ServerDeps{
		Conf:          env.Conf,
		Logger:        env.Logger,
		UserSvc:       env.UserSvc,
		ActionCardSvc: env.CardSvc,
		WorkshopSvc:   env.WorkshopSvc,
		Validate:      env.Validate,
		Translator:    env.Translator,
	})
}

type httpErr struct {
	Msg     string      `json:"msg"`
	Details interface{} `json:"details,omitempty"`
}

func newHttpErr(err *core.Error, details ...interface{}) httpErr {
	e := httpErr{Msg: err.Error()}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// serve runs tt against app and checks the response.
func serve(t *testing.T, app http.Handler, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	if len(b1) == 0 || len(b2) == 0 {
		return len(b1) == len(b2), nil
	}
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func userJSON(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        usr.ID,
		"firstName": usr.FirstName,
		"lastName":  usr.LastName,
		"email":     usr.Email,
		"role":      usr.MaxRole(),
	}
}

func coachJSON(usr user.User) map[string]interface{} {
	v := userJSON(usr)
	v["city"] = usr.City
	v["workshopsCount"] = usr.WorkshopsCount
	v["awarenessRaisedCount"] = usr.AwarenessRaisedCount
	return v
}

// decode unmarshals the recorded body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v", err)
	}
}
