package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// ErrNotSealed is returned when a sealing store loads a run that carries no
// ciphertext. Loading plaintext through a sealing store fails closed rather
// than silently serving unencrypted data.
var ErrNotSealed = errors.New("run state carries no sealed envelope")

// SealConfig holds the keys for sealing runs at rest.
type SealConfig struct {
	// ActiveKey encrypts new snapshots. Must be 32 bytes (AES-256).
	ActiveKey []byte

	// FallbackKeys are previous keys tried in order when the active key
	// cannot open a snapshot, so keys rotate without re-encrypting every
	// stored run up front. The next Save re-seals under the active key.
	FallbackKeys [][]byte
}

type sealingStore struct {
	next ports.RunStore
	cfg  SealConfig
}

// NewSealing seals run snapshots with AES-GCM before they reach the wrapped
// store. What the store sees is an envelope: session identity, phase, and
// timestamps in clear (session listing and monitoring still work), every
// content field cleared, and the ciphertext in Sealed. Panics when ActiveKey
// is not 32 bytes; the config loader validates key files before this runs.
func NewSealing(cfg SealConfig) Middleware {
	if len(cfg.ActiveKey) != 32 {
		panic("sealing: active key must be 32 bytes (AES-256)")
	}
	return func(next ports.RunStore) ports.RunStore {
		return &sealingStore{next: next, cfg: cfg}
	}
}

func (s *sealingStore) Save(ctx context.Context, sessionID string, state *domain.RunState) error {
	plaintext, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal run state: %w", err)
	}

	ciphertext, err := seal(plaintext, s.cfg.ActiveKey)
	if err != nil {
		return fmt.Errorf("seal run state: %w", err)
	}

	envelope := &domain.RunState{
		SessionID: state.SessionID,
		Phase:     state.Phase,
		Sealed:    ciphertext,
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
	}
	return s.next.Save(ctx, sessionID, envelope)
}

func (s *sealingStore) Load(ctx context.Context, sessionID string) (*domain.RunState, error) {
	envelope, err := s.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(envelope.Sealed) == 0 {
		return nil, fmt.Errorf("load %s: %w", sessionID, ErrNotSealed)
	}

	plaintext, err := openWithRotation(envelope.Sealed, s.cfg.ActiveKey, s.cfg.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("unseal %s: %w", sessionID, err)
	}

	var state domain.RunState
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, fmt.Errorf("unmarshal unsealed run state: %w", err)
	}
	return &state, nil
}

func (s *sealingStore) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

func (s *sealingStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	// Nonce rides in front of the ciphertext.
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func openWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := open(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := open(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no configured key opens this snapshot")
}

func open(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
