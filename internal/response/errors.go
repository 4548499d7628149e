package response

// ErrCode is the "type" of an error envelope.
type ErrCode string

const (
	// ─── Domain ────────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "ResourceNotFound"
	ErrBusinessRule ErrCode = "BusinessRuleViolation"
	ErrValidation   ErrCode = "ValidationError"

	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "InvalidCredentials"
	ErrTokenRequired      ErrCode = "TokenRequired"
	ErrTokenInvalid       ErrCode = "TokenInvalid"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RateLimitExceeded"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "InternalError"
)

// GetMessage returns the default message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrBusinessRule:
		return "A operação viola uma regra de negócio."
	case ErrValidation:
		return "Dados inválidos. Verifique os campos enviados."
	case ErrInvalidCredentials:
		return "Usuário ou senha incorretos."
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido ou expirado."
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente mais tarde."
	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Erro inesperado."
	}
}
