package confirmation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const confirmationDataFile = "email_confirmations.json"

// FileConfirmationRepository implements ConfirmationRepository on a JSON file.
// Each committed transaction rewrites the file atomically.
type FileConfirmationRepository struct {
	dataDir string
	state   *memState
	mutex   sync.Mutex
}

// confirmationData represents the structure of data stored in the JSON file
type confirmationData struct {
	Records  []Record  `json:"records"`
	Accounts []Account `json:"accounts"`
}

// NewFileConfirmationRepository creates a new file-based confirmation repository
func NewFileConfirmationRepository(dataDir string) (*FileConfirmationRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileConfirmationRepository{
		dataDir: dataDir,
		state:   newMemState(),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// InTx runs fn against a working copy and persists it when fn succeeds
func (r *FileConfirmationRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	work := r.state.clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := r.save(work); err != nil {
		return err
	}
	r.state = work
	return nil
}

// PutAccount seeds or replaces an account and persists it
func (r *FileConfirmationRepository) PutAccount(account Account) error {
	return r.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		tx.(*memState).Accounts[account.ID] = account
		return nil
	})
}

// Close is a no-op; every commit is already on disk
func (r *FileConfirmationRepository) Close() error {
	return nil
}

// load reads confirmation data from file
func (r *FileConfirmationRepository) load() error {
	filePath := filepath.Join(r.dataDir, confirmationDataFile)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var cd confirmationData
	if err := json.Unmarshal(data, &cd); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	for _, rec := range cd.Records {
		r.state.Records[rec.ID] = rec
	}
	for _, account := range cd.Accounts {
		r.state.Accounts[account.ID] = account
	}

	return nil
}

// save writes the given state to file atomically
func (r *FileConfirmationRepository) save(state *memState) error {
	data := confirmationData{
		Records:  make([]Record, 0, len(state.Records)),
		Accounts: make([]Account, 0, len(state.Accounts)),
	}
	for _, rec := range state.Records {
		data.Records = append(data.Records, rec)
	}
	for _, account := range state.Accounts {
		data.Accounts = append(data.Accounts, account)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(r.dataDir, confirmationDataFile+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalFile := filepath.Join(r.dataDir, confirmationDataFile)
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
