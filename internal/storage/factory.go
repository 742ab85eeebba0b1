package storage

import "github.com/Alessandro-giacometti/sleep-debt-app/internal"

type Repositories struct {
	Samples   SampleRepository
	Settings  SettingsRepository
	SyncState SyncStateRepository
}

func NewFileRepositories(samplesFile, stateFile string, logger internal.Logger) (*Repositories, *FileStorage, error) {
	storage, err := NewFileStorage(samplesFile, stateFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return &Repositories{Samples: storage, Settings: storage, SyncState: storage}, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (*Repositories, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Samples: storage, Settings: storage, SyncState: storage}, nil
}
