package auth

import (
	"encoding/json"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// UnlockCache remembers a bcrypt hash of the last credentials that passed a
// real backend login, so the terminal can be unlocked while the backend is
// down. It gates the local UI only; it cannot authorize backend calls.
type UnlockCache struct {
	path string
}

type unlockRecord struct {
	Email string `json:"email"`
	Hash  string `json:"hash"`
}

func NewUnlockCache(path string) *UnlockCache { return &UnlockCache{path: path} }

func (u *UnlockCache) Remember(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	b, err := json.Marshal(unlockRecord{Email: email, Hash: string(hash)})
	if err != nil {
		return err
	}
	return os.WriteFile(u.path, b, 0o600)
}

func (u *UnlockCache) Verify(email, password string) bool {
	b, err := os.ReadFile(u.path)
	if err != nil {
		return false
	}
	var rec unlockRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return false
	}
	if rec.Email != email {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(rec.Hash), []byte(password)) == nil
}
