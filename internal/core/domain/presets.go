package domain

import "time"

// Políticas pré-definidas da plataforma. Cada função retorna um valor novo,
// então o chamador pode ajustar Whitelist ou limites sem afetar os demais.

func AuthPolicy() Policy {
	return Policy{
		Name:    "auth",
		Window:  15 * time.Minute,
		Limit:   5,
		Message: "too many authentication attempts, please try again later",
	}
}

func APIPolicy() Policy {
	return Policy{
		Name:    "api",
		Window:  15 * time.Minute,
		Limit:   100,
		KeyFunc: UserKey,
		Message: "API rate limit exceeded",
	}
}

func PublicPolicy() Policy {
	return Policy{
		Name:    "public",
		Window:  15 * time.Minute,
		Limit:   1000,
		Message: "too many requests, please slow down",
	}
}

func UploadPolicy() Policy {
	return Policy{
		Name:    "upload",
		Window:  time.Hour,
		Limit:   10,
		KeyFunc: UserKey,
		Message: "upload limit reached, please try again later",
	}
}

func PasswordResetPolicy() Policy {
	return Policy{
		Name:    "password-reset",
		Window:  time.Hour,
		Limit:   3,
		Message: "too many password reset requests",
	}
}

func TradingPolicy() Policy {
	return Policy{
		Name:    "trading",
		Window:  time.Minute,
		Limit:   10,
		KeyFunc: UserKey,
		Message: "trading rate limit exceeded, please wait before retrying",
	}
}
