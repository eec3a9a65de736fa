package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Messages are in Portuguese to match the UI.
//
// Codes by category:
//
//	FILE001 - File too large          Patterns: "file too large", "request body too large"
//	FILE002 - No file                 Patterns: "no file provided"
//	FILE003 - Unsupported type        Patterns: "unsupported file type"
//	FILE004 - Too many files          Patterns: "too many files"
//	FILE005 - Invalid form            Patterns: "invalid form", "multipart"
//
//	UPL001 - Already processing       Patterns: "upload in progress"
//	UPL002 - System busy              Patterns: "too many concurrent uploads"
//	UPL003 - Session expired          Patterns: "session closed", "session not found"
//	UPL004 - Request cancelled        Patterns: "context canceled"
//	UPL005 - Request timeout          Patterns: "context deadline exceeded"
//
//	PRV001 - Preview unavailable      Patterns: "preview not found"
//	THM001 - Unknown theme            Patterns: "unknown theme"
//	RATE001 - Rate limited            Patterns: "rate limit"
//
//	ERR000 - Fallback when nothing matches; check the logs for the cause.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns go before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgFileTooLarge = UserMessage{
		Message: "Arquivo excede o tamanho máximo permitido",
		Action:  "Envie uma imagem menor",
		Code:    "FILE001",
	}
	msgInvalidForm = UserMessage{
		Message: "Formulário de envio inválido",
		Action:  "Selecione o arquivo novamente",
		Code:    "FILE005",
	}
	msgSessionExpired = UserMessage{
		Message: "Sessão de upload expirada",
		Action:  "Recarregue a página e selecione a imagem novamente",
		Code:    "UPL003",
	}
)

var errorPatterns = []errorPattern{
	// File errors
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Nenhuma imagem foi selecionada",
			Action:  "Selecione uma imagem .jpg, .png ou .webp",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Tipo de arquivo não suportado",
			Action:  "Use uma imagem .jpg, .png ou .webp",
			Code:    "FILE003",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Apenas uma imagem por vez",
			Action:  "Selecione uma única imagem",
			Code:    "FILE004",
		},
	},
	{pattern: "invalid form", msg: msgInvalidForm},
	{pattern: "multipart", msg: msgInvalidForm},

	// Upload session errors
	{
		pattern: "upload in progress",
		msg: UserMessage{
			Message: "Já existe um processamento em andamento",
			Action:  "Aguarde a conclusão antes de enviar novamente",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "Sistema ocupado com outros processamentos",
			Action:  "Aguarde um momento e tente novamente",
			Code:    "UPL002",
		},
	},
	{pattern: "session closed", msg: msgSessionExpired},
	{pattern: "session not found", msg: msgSessionExpired},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Requisição cancelada",
			Action:  "Tente novamente",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Tempo de requisição esgotado",
			Action:  "Verifique sua conexão e tente novamente",
			Code:    "UPL005",
		},
	},

	// Preview and shell
	{
		pattern: "preview not found",
		msg: UserMessage{
			Message: "Pré-visualização indisponível",
			Action:  "Selecione a imagem novamente",
			Code:    "PRV001",
		},
	},
	{
		pattern: "unknown theme",
		msg: UserMessage{
			Message: "Tema desconhecido",
			Action:  "Escolha um dos temas disponíveis",
			Code:    "THM001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Muitas requisições",
			Action:  "Aguarde um momento antes de tentar novamente",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000; nil maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Código: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
