package utils

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookieNameParticipantID = "participant_id"

// EnsureParticipantID returns the participant id bound to this browser,
// minting and setting one when none exists yet. The id survives reloads so a
// returning tab reconnects as the same participant.
func EnsureParticipantID(w http.ResponseWriter, r *http.Request) string {
	if id := GetParticipantIDFromCookie(r); id != "" {
		return id
	}
	newID := uuid.New().String()
	SetPersistentParticipantIDCookie(newID, w)
	return newID
}

func GetParticipantIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieNameParticipantID)
	if err != nil {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func SetPersistentParticipantIDCookie(participantID string, w http.ResponseWriter) {
	expires := time.Now().Add(30 * 24 * time.Hour)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieNameParticipantID,
		Value:    base64.StdEncoding.EncodeToString([]byte(participantID)),
		Path:     "/",
		HttpOnly: true,
		Expires:  expires,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
}
