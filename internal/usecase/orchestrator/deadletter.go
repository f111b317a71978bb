package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agencyos/meeting-scribe/internal/domain/entities"
)

// DeadLetterStore persists one JSON file per failed delivery, named
// <deliveryId>-<unixms>.json, so failures survive restarts and can be
// replayed manually or through the retry endpoint.
type DeadLetterStore struct {
	dir    string
	logger *zap.Logger
}

// NewDeadLetterStore creates the store, ensuring the directory exists
func NewDeadLetterStore(dir string, logger *zap.Logger) (*DeadLetterStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dead-letter directory: %w", err)
	}
	return &DeadLetterStore{dir: dir, logger: logger}, nil
}

// Store writes the record to disk
func (s *DeadLetterStore) Store(dl *entities.DeadLetter) error {
	data, err := json.MarshalIndent(dl, "", "  ")
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%d.json", dl.DeliveryID, dl.Timestamp.UnixMilli())
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("dead letter stored",
			zap.String("delivery_id", dl.DeliveryID),
			zap.String("file", filename),
		)
	}
	return nil
}

// Load returns the newest dead letter for the delivery id together with the
// filename it was read from
func (s *DeadLetterStore) Load(deliveryID string) (*entities.DeadLetter, string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, "", err
	}

	var matches []string
	for _, e := range entries {
		if !e.IsDir() && matchesDelivery(e.Name(), deliveryID) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return nil, "", os.ErrNotExist
	}
	sort.Strings(matches)
	newest := matches[len(matches)-1]

	data, err := os.ReadFile(filepath.Join(s.dir, newest))
	if err != nil {
		return nil, "", err
	}

	var dl entities.DeadLetter
	if err := json.Unmarshal(data, &dl); err != nil {
		return nil, "", fmt.Errorf("corrupt dead letter %s: %w", newest, err)
	}
	return &dl, newest, nil
}

// matchesDelivery checks that a filename is exactly <deliveryID>-<unixms>.json
// so ids that prefix other ids cannot shadow each other
func matchesDelivery(filename, deliveryID string) bool {
	rest, ok := strings.CutPrefix(filename, deliveryID+"-")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Remove deletes a dead-letter file after a successful replay
func (s *DeadLetterStore) Remove(filename string) error {
	return os.Remove(filepath.Join(s.dir, filename))
}
