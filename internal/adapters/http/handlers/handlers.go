// Package handlers agrupa handlers HTTP utilizados para exercitar os limites.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Ping responde com uma mensagem simples para verificar o limiter público.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// Login simula o endpoint de autenticação protegido pela política auth.
func Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// Quote simula um endpoint de API protegido pela política por usuário.
func Quote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"pair": "ETH/USDC", "status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
