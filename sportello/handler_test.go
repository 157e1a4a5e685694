package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/tiffin/ordine"
	"github.com/taldoflemis/tiffin/pacchetto"
)

type testServer struct {
	echo   *echo.Echo
	table  *OrderTable
	pubsub *GoChannelOrderPubSubber
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	settings := &Settings{
		HTTP: pacchetto.HTTPSettings{
			Prefix: "/v1",
			CORS: pacchetto.CORSSettings{
				Origins: []string{"http://localhost:3000"},
				Methods: []string{"GET", "POST"},
				Headers: []string{"Content-Type"},
			},
		},
	}
	health, err := healthgo.New(healthgo.WithComponent(healthgo.Component{Name: "sportello", Version: "test"}))
	require.NoError(t, err)

	ts := &testServer{
		echo:   echo.New(),
		table:  NewOrderTable(),
		pubsub: NewGoChannelOrderPubSubber(4),
	}
	_, err = NewMainHandler(ts.echo, settings, ts.pubsub, ts.table, health)
	require.NoError(t, err)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

const validOrderBody = `{
	"username": "ab_c",
	"gender": "Female",
	"email": "a@b.com",
	"phone": "+919876543210",
	"location": "chennai",
	"meals": ["breakfast", "lunch"],
	"date": "2024-03-01"
}`

func TestSubmitOrderAccepted(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order", validOrderBody)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry ordine.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, 40, entry.TotalPrice)
	assert.Equal(t, ordine.Female, entry.Gender)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.OrderedAt.IsZero())

	rows := ts.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, entry.ID, rows[0].ID)
}

func TestSubmitOrderRejectedReportsEveryField(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order", `{
		"username": "",
		"gender": "male",
		"email": "a@b.com",
		"location": "erode",
		"meals": [],
		"date": "2024-03-01"
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Len(t, resp.Fields, len(ordine.Fields))
	assert.Equal(t, map[ordine.Field]string{
		ordine.FieldUsername: ordine.MsgUsernameRequired,
		ordine.FieldMeal:     ordine.MsgMealRequired,
	}, resp.Fields.Errors())
	assert.Zero(t, ts.table.Len())
}

func TestSubmitOrderDropsMealsTheLocationDoesNotServe(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order", `{
		"username": "ab_c",
		"gender": "male",
		"email": "a@b.com",
		"location": "erode",
		"meals": ["breakfast", "dinner"],
		"date": "2024-03-01"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry ordine.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, []ordine.Meal{ordine.Dinner}, entry.Meals.Slice())
	assert.Equal(t, 20, entry.TotalPrice)
}

func TestValidateAndSubmitAgreeOnUnservedMeals(t *testing.T) {
	ts := newTestServer(t)
	body := `{
		"username": "ab_c",
		"gender": "male",
		"email": "a@b.com",
		"location": "erode",
		"meals": ["breakfast"],
		"date": "2024-03-01"
	}`

	rec := ts.do(http.MethodPost, "/v1/order/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var validated ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validated))
	assert.False(t, validated.Valid)
	assert.Equal(t, map[ordine.Field]string{ordine.FieldMeal: ordine.MsgMealRequired}, validated.Fields.Errors())

	rec = ts.do(http.MethodPost, "/v1/order/validate/meal", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var field FieldValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &field))
	assert.Equal(t, FieldValidationResponse{Field: ordine.FieldMeal, Message: ordine.MsgMealRequired}, field)

	rec = ts.do(http.MethodPost, "/v1/order", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var submitted ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.Equal(t, validated, submitted)
}

func TestSwaggerDocument(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/swagger/doc.json", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Sportello", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/v1/order")
	assert.Contains(t, doc.Paths, "/v1/order/validate/{field}")
}

func TestSubmitOrderBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"username": `},
		{name: "unknown meal", body: `{"meals": ["brunch"]}`},
		{name: "unknown gender", body: `{"gender": "robot"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(http.MethodPost, "/v1/order", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitOrderPublishesLiveOrder(t *testing.T) {
	ts := newTestServer(t)
	ch, err := ts.pubsub.SubLiveOrders(t.Context(), "listener")
	require.NoError(t, err)

	rec := ts.do(http.MethodPost, "/v1/order", validOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case entry := <-ch:
		assert.Equal(t, "ab_c", entry.Username)
	case <-time.After(time.Second):
		t.Fatal("no live order published")
	}
}

func TestValidateOrder(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order/validate", `{"username": "1abc_", "email": "a@b.co"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, ordine.MsgUsernameDigit, resp.Fields[ordine.FieldUsername].Message)
	assert.Equal(t, ordine.MsgEmailAfterDot, resp.Fields[ordine.FieldEmail].Message)
	assert.True(t, resp.Fields[ordine.FieldPhone].Valid)
	assert.Zero(t, ts.table.Len(), "validation never submits")
}

func TestValidateOrderField(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order/validate/phone", `{"phone": "9876543210"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp FieldValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, FieldValidationResponse{Field: ordine.FieldPhone, Message: ordine.MsgPhoneFormat}, resp)

	rec = ts.do(http.MethodPost, "/v1/order/validate/nickname", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLocationMeals(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/v1/locations/Erode/meals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"location": "erode", "meals": ["lunch", "dinner"]}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/v1/locations/madurai/meals", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMenu(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/v1/menu", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"locations": [
			{"location": "chennai", "meals": ["breakfast", "lunch"]},
			{"location": "coimbatore", "meals": ["breakfast", "lunch", "dinner"]},
			{"location": "erode", "meals": ["lunch", "dinner"]}
		],
		"prices": {"breakfast": 15, "lunch": 25, "dinner": 20}
	}`, rec.Body.String())
}

func TestReconcileMeals(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/order/reconcile", `{"location": "chennai", "meals": ["Dinner", "lunch"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"location": "chennai", "meals": ["lunch"]}`, rec.Body.String())
}

func TestListOrders(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/order", validOrderBody).Code)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/order", validOrderBody).Code)

	rec := ts.do(http.MethodGet, "/v1/orders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []ordine.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveOrdersWebSocket(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.echo)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/order/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	resp, err := http.Post(srv.URL+"/v1/order", echo.MIMEApplicationJSON, strings.NewReader(validOrderBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var entry ordine.Entry
	require.NoError(t, ws.ReadJSON(&entry))
	assert.Equal(t, 40, entry.TotalPrice)
}
