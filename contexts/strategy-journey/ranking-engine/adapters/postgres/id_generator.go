package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// shareCodeAlphabet leaves out 0/O and 1/I so codes survive being read aloud.
const shareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const shareCodeLength = 8

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// ShareCodeGenerator derives achievement share codes from random UUID bytes.
type ShareCodeGenerator struct{}

func (ShareCodeGenerator) NewShareCode(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	code := make([]byte, shareCodeLength)
	for i := range code {
		code[i] = shareCodeAlphabet[int(id[i])%len(shareCodeAlphabet)]
	}
	return string(code), nil
}
