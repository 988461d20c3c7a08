package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coleta-bot/internal/observability/metrics"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(Config{
		BaseURL: ts.URL + "/",
		Timeout: time.Second,
		Metrics: metrics.NewActionMetrics(prometheus.NewRegistry()),
	})
}

func TestLookupCustomer_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/clientes/consulta-cliente-telefone/5511999990000", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"nome_cliente":    "Ana",
			"id_cliente":      12,
			"tem_agendamento": true,
			"agendamentos": []map[string]any{
				{"dia_agendado": "01/05/2024", "turno_agendado": "Manhã"},
				{"dia_agendado": "08/05/2024", "turno_agendado": "Tarde"},
			},
		})
	})

	lookup, out := c.LookupCustomer(context.Background(), "5511999990000")
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, "Ana", lookup.Name)
	assert.Equal(t, 12, lookup.CustomerID)

	appt, ok := lookup.ActiveAppointment()
	require.True(t, ok)
	assert.Equal(t, "01/05/2024", appt.ScheduledDate)
	assert.Equal(t, "Manhã", appt.ScheduledShift)
}

func TestLookupCustomer_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, out := c.LookupCustomer(context.Background(), "123")
	assert.Equal(t, OutcomeUnexpectedStatus, out.Kind)
	assert.Error(t, out.Err)
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   OutcomeKind
	}{
		{"ok", http.StatusOK, OutcomeOK},
		{"created", http.StatusCreated, OutcomeOK},
		{"not found", http.StatusNotFound, OutcomeNotFound},
		{"bad request", http.StatusBadRequest, OutcomeClientError},
		{"conflict", http.StatusConflict, OutcomeClientError},
		{"server error", http.StatusInternalServerError, OutcomeUnexpectedStatus},
		{"redirect", http.StatusNotModified, OutcomeUnexpectedStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			out := c.Do(context.Background(), http.MethodGet, "x", nil)
			assert.Equal(t, tt.want, out.Kind)
			assert.Equal(t, tt.status, out.StatusCode)
		})
	}
}

func TestCreateAppointment_SendsBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agendamentos/telefone", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	out := c.CreateAppointment(context.Background(), CreateRequest{
		Phone:          "5511",
		ScheduledDate:  "2024-05-01",
		ScheduledShift: ShiftMorning,
		UserID:         1,
	})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, "5511", got["telefone_cliente"])
	assert.Equal(t, "2024-05-01", got["dia_agendado"])
	assert.Equal(t, "Manhã", got["turno_agendado"])
	assert.Equal(t, "Agendado via chatbot", got["observacoes"])
	assert.EqualValues(t, 1, got["id_usuario"])
	_, hasCustomer := got["id_cliente"]
	assert.False(t, hasCustomer, "unknown customer id must be omitted")
}

func TestRescheduleAndCancel_Paths(t *testing.T) {
	var methods, paths []string
	var notes string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.EscapedPath())
		if r.Method == http.MethodPut {
			var body RescheduleRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			notes = body.Notes
		}
	})

	require.Equal(t, OutcomeOK, c.RescheduleAppointment(context.Background(), "55 11", RescheduleRequest{ScheduledDate: "d", ScheduledShift: ShiftNight}).Kind)
	require.Equal(t, OutcomeOK, c.CancelAppointment(context.Background(), "5511").Kind)

	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
	assert.Equal(t, []string{"/agendamentos/telefone/55%2011", "/agendamentos/telefone/5511"}, paths)
	assert.Equal(t, "Remarcado pelo chatbot", notes)
}

func TestDo_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	out := c.CancelAppointment(context.Background(), "5511")
	assert.Equal(t, OutcomeTimeout, out.Kind)
	assert.Error(t, out.Err)
}

func TestDo_ConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second})
	out := c.CancelAppointment(context.Background(), "5511")
	assert.Equal(t, OutcomeConnectionError, out.Kind)
	assert.NotEmpty(t, out.Detail())
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		parsed bool
	}{
		{"error key", `{"error":"A data agendada não pode ser no passado."}`, "A data agendada não pode ser no passado.", true},
		{"erro key", `{"erro":"Zona inválida"}`, "Zona inválida", true},
		{"error wins", `{"error":"a","erro":"b"}`, "a", true},
		{"no key", `{"message":"x"}`, UnknownErrorMessage, false},
		{"not json", `Internal Server Error`, UnknownErrorMessage, false},
		{"empty", ``, UnknownErrorMessage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorBody([]byte(tt.body))
			assert.Equal(t, tt.want, got.Message)
			assert.Equal(t, tt.parsed, got.Parsed)
		})
	}
}

func TestParseShift(t *testing.T) {
	tests := map[string]struct {
		want Shift
		ok   bool
	}{
		"manhã":      {ShiftMorning, true},
		"Manha":      {ShiftMorning, true},
		" TARDE ":    {ShiftAfternoon, true},
		"à noite":    {ShiftNight, true},
		"madrugada ": {Shift("madrugada"), false},
	}
	for in, tt := range tests {
		got, ok := ParseShift(in)
		assert.Equal(t, tt.want, got, in)
		assert.Equal(t, tt.ok, ok, in)
	}
}

func TestActiveAppointment_NoneWhenFlagFalse(t *testing.T) {
	lookup := CustomerLookup{
		HasActiveAppointment: false,
		Appointments:         []Appointment{{ScheduledDate: "x", ScheduledShift: "y"}},
	}
	_, ok := lookup.ActiveAppointment()
	assert.False(t, ok)

	lookup = CustomerLookup{HasActiveAppointment: true}
	_, ok = lookup.ActiveAppointment()
	assert.False(t, ok)
}
