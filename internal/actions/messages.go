package actions

// Response templates defined in the dialogue domain.
const (
	TemplateNoRegistration          = "utter_saudacao_usuario_sem_cadastro"
	TemplateRegisteredWithPickup    = "utter_saudacao_usuario_com_cadastro_com_agendamento"
	TemplateRegisteredWithoutPickup = "utter_saudacao_usuario_com_cadastro_sem_agendamento"
)

const (
	msgConnectionError = "Erro de conexão com o servidor. Tente novamente mais tarde."

	msgCheckFailed = "Erro ao verificar o cadastro. Tente novamente mais tarde."

	msgCreateMissingSlots = "Por favor, informe a data e o turno para o agendamento."
	msgCreateTimeout      = "O servidor demorou para responder. Tente novamente em instantes."
	msgCreateSucceeded    = "Seu agendamento foi registrado com sucesso para o dia %s no turno da %s!"
	msgCreateFailed       = "Não foi possível realizar o agendamento: %s"

	msgRescheduleMissingSlots = "Por favor, informe a nova data e o novo turno para a remarcação."
	msgRescheduleSucceeded    = "Seu agendamento foi remarcado para o dia %s no turno da %s."
	msgRescheduleNotFound     = "Não encontrei um agendamento anterior para ser remarcado."
	msgRescheduleFailed       = "Ocorreu um erro ao tentar remarcar. Tente novamente mais tarde."
	msgRescheduleTimeout      = "Houve um tempo de espera muito grande. Tente novamente em instantes."
	msgRescheduleUnexpected   = "Erro inesperado: %s"

	msgCancelNoActive  = "Você não possui agendamento ativo para cancelar."
	msgCancelSucceeded = "Seu agendamento de %s (%s) foi cancelado com sucesso."
	msgCancelNotFound  = "Nenhum agendamento pendente encontrado para este número."
	msgCancelFailed    = "Erro ao tentar cancelar o agendamento. Tente novamente."
)
