package domain

// KeyFunc deriva a chave do contador a partir da requisição. Implementações
// devem ser funções puras e totais.
type KeyFunc func(Request) string

const keyPrefix = "rate_limit:"

// UnknownOrigin é o balde compartilhado por requisições sem origem derivável.
const UnknownOrigin = "unknown"

// OriginKey é a estratégia padrão, baseada no identificador de origem.
func OriginKey(req Request) string {
	origin := req.Origin
	if origin == "" {
		origin = UnknownOrigin
	}
	return keyPrefix + origin
}

// UserKey usa a identidade do usuário quando presente, senão cai em OriginKey.
func UserKey(req Request) string {
	if req.UserID != "" {
		return keyPrefix + "user:" + req.UserID
	}
	return OriginKey(req)
}

// APIKeyKey usa a credencial de API quando presente, senão cai em OriginKey.
func APIKeyKey(req Request) string {
	if req.APIKey != "" {
		return keyPrefix + "api:" + req.APIKey
	}
	return OriginKey(req)
}

// EndpointKey combina origem e rota, isolando quota por endpoint.
func EndpointKey(req Request) string {
	return OriginKey(req) + ":" + req.Path
}

// PrefixedKey adiciona um namespace à chave derivada por fn, permitindo que
// políticas compostas sobre a mesma requisição nunca colidam contadores.
func PrefixedKey(prefix string, fn KeyFunc) KeyFunc {
	if fn == nil {
		fn = OriginKey
	}
	return func(req Request) string {
		return prefix + fn(req)
	}
}
