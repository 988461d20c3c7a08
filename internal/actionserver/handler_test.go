package actionserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coleta-bot/internal/actions"
	"github.com/wolfman30/coleta-bot/internal/scheduling"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

// newTestServer wires the action server to a scheduling backend served by backend.
func newTestServer(t *testing.T, backend http.HandlerFunc) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	logger := logging.NewWithWriter("error", io.Discard)
	client := scheduling.NewClient(scheduling.Config{BaseURL: upstream.URL, Logger: logger})
	registry := actions.NewRegistry(actions.Deps{Backend: client, ChatbotUserID: 1, Logger: logger})
	return NewHandler(registry, logger).Routes()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestWebhook_CheckCustomerWithAppointment(t *testing.T) {
	var path string
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"nome_cliente":"Ana","id_cliente":9,"tem_agendamento":true,"agendamentos":[{"dia_agendado":"01/05/2024","turno_agendado":"Manhã"}]}`))
	})

	rr := post(t, h, `{"next_action":"action_verificar_cliente","sender_id":"5511988887777","tracker":{"sender_id":"5511988887777","slots":{}},"domain":{},"version":"3.6.0"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "/clientes/consulta-cliente-telefone/5511988887777", path)

	resp := decode(t, rr)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t, actions.TemplateRegisteredWithPickup, resp.Responses[0]["response"])
	assert.Equal(t, "Ana", resp.Responses[0]["nome"])

	values := map[string]any{}
	for _, e := range resp.Events {
		assert.Equal(t, "slot", e.Event)
		values[e.Name] = e.Value
	}
	assert.Equal(t, true, values[actions.SlotHasRegistration])
	assert.Equal(t, "01/05/2024", values[actions.SlotScheduledDate])
	assert.Equal(t, float64(9), values[actions.SlotCustomerID])
}

func TestWebhook_BackendDownStillAnswers200(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	rr := post(t, h, `{"next_action":"action_verificar_cliente","tracker":{"sender_id":"5511","slots":{}}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode(t, rr)
	assert.Empty(t, resp.Events)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t, "Erro ao verificar o cadastro. Tente novamente mais tarde.", resp.Responses[0]["text"])
}

func TestWebhook_CancelClearsMirror(t *testing.T) {
	var method string
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	})

	rr := post(t, h, `{"next_action":"action_cancelar_coleta","sender_id":"5511","tracker":{"slots":{"agendamento_ativo":true,"data_agendada":"01/05/2024","turno_agendado":"Manhã"}}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.MethodDelete, method)
	assert.JSONEq(t, `{
		"events": [
			{"event":"slot","timestamp":null,"name":"agendamento_ativo","value":false},
			{"event":"slot","timestamp":null,"name":"data_agendada","value":null},
			{"event":"slot","timestamp":null,"name":"turno_agendado","value":null}
		],
		"responses": [{"text":"Seu agendamento de 01/05/2024 (Manhã) foi cancelado com sucesso."}]
	}`, rr.Body.String())
}

func TestWebhook_SkippedActionReturnsEmptyEvents(t *testing.T) {
	called := false
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := post(t, h, `{"next_action":"action_agendar_coleta","sender_id":"5511","tracker":{"sender_id":"5511","slots":{"nova_data":null}}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, called)
	assert.JSONEq(t, `{"events":[],"responses":[{"text":"Por favor, informe a data e o turno para o agendamento."}]}`, rr.Body.String())
}

func TestWebhook_UnknownAction(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := post(t, h, `{"next_action":"action_inexistente","tracker":{"sender_id":"5511"}}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "action_inexistente", body.ActionName)
	assert.Contains(t, body.Error, "action_inexistente")
}

func TestWebhook_BadRequests(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, body := range []string{`{broken`, `{"tracker":{"sender_id":"5511"}}`} {
		rr := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestListActions(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/actions", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []ActionInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, []ActionInfo{
		{Name: "action_agendar_coleta"},
		{Name: "action_cancelar_coleta"},
		{Name: "action_remarcar_coleta"},
		{Name: "action_verificar_cliente"},
	}, got)
}
