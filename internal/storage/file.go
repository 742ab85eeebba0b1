package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

// FileStorage keeps everything in memory and persists to two JSON files with
// debounced background saves. Every mutation happens under the lock, so each
// date-keyed upsert is atomic and the last writer wins.
type FileStorage struct {
	samples  map[internal.Origin]map[string]*internal.SleepSample
	settings *internal.UserSettings
	lastSync *time.Time

	mu              sync.RWMutex
	samplesFile     string
	stateFile       string
	saveSamplesChan chan struct{}
	saveStateChan   chan struct{}
	shutdownChan    chan struct{}
	saveDelay       time.Duration
	logger          internal.Logger
}

type fileSamples struct {
	Real    []internal.SleepSample `json:"real"`
	Example []internal.SleepSample `json:"example"`
}

type fileState struct {
	Settings *internal.UserSettings `json:"settings,omitempty"`
	LastSync *time.Time             `json:"last_sync,omitempty"`
}

func NewFileStorage(samplesFile, stateFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		samples: map[internal.Origin]map[string]*internal.SleepSample{
			internal.OriginReal:    {},
			internal.OriginExample: {},
		},
		samplesFile:     samplesFile,
		stateFile:       stateFile,
		saveSamplesChan: make(chan struct{}, 1),
		saveStateChan:   make(chan struct{}, 1),
		shutdownChan:    make(chan struct{}),
		saveDelay:       500 * time.Millisecond,
		logger:          logger,
	}

	if err := s.loadSamples(); err != nil {
		logger.Errorf("storage: failed to load sleep samples: %v", err)
		return nil, err
	}
	if err := s.loadState(); err != nil {
		logger.Errorf("storage: failed to load app state: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveSamplesChan, s.saveSamples, "sleep samples")
	go s.saveWorker(s.saveStateChan, s.saveState, "app state")

	return s, nil
}

func (s *FileStorage) loadSamples() error {
	file, err := os.Open(s.samplesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var data fileSamples
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range data.Real {
		s.samples[internal.OriginReal][data.Real[i].Date] = &data.Real[i]
	}
	for i := range data.Example {
		s.samples[internal.OriginExample][data.Example[i].Date] = &data.Example[i]
	}
	return nil
}

func (s *FileStorage) loadState() error {
	file, err := os.Open(s.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var state fileState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = state.Settings
	s.lastSync = state.LastSync
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveSamples() error {
	s.mu.RLock()
	data := fileSamples{
		Real:    make([]internal.SleepSample, 0, len(s.samples[internal.OriginReal])),
		Example: make([]internal.SleepSample, 0, len(s.samples[internal.OriginExample])),
	}
	for _, sample := range s.samples[internal.OriginReal] {
		data.Real = append(data.Real, *sample)
	}
	for _, sample := range s.samples[internal.OriginExample] {
		data.Example = append(data.Example, *sample)
	}
	s.mu.RUnlock()

	sort.Slice(data.Real, func(i, j int) bool { return data.Real[i].Date < data.Real[j].Date })
	sort.Slice(data.Example, func(i, j int) bool { return data.Example[i].Date < data.Example[j].Date })

	return atomicWriteFileJSON(s.samplesFile, data)
}

func (s *FileStorage) saveState() error {
	s.mu.RLock()
	state := fileState{Settings: s.settings, LastSync: s.lastSync}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.stateFile, state)
}

// saveWorker batches save operations to avoid frequent disk writes.
func (s *FileStorage) saveWorker(signal chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown.
	if err := s.saveSamples(); err != nil {
		return err
	}
	return s.saveState()
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// --- SampleRepository ---

func (s *FileStorage) UpsertSample(ctx context.Context, origin internal.Origin, sample *internal.SleepSample) error {
	s.mu.Lock()
	copied := *sample
	s.samples[origin][sample.Date] = &copied
	s.mu.Unlock()

	signalSave(s.saveSamplesChan)
	return nil
}

func (s *FileStorage) UpsertSamples(ctx context.Context, origin internal.Origin, samples []internal.SleepSample) (int, error) {
	s.mu.Lock()
	for i := range samples {
		copied := samples[i]
		s.samples[origin][copied.Date] = &copied
	}
	s.mu.Unlock()

	signalSave(s.saveSamplesChan)
	return len(samples), nil
}

func (s *FileStorage) ListSamples(ctx context.Context, origin internal.Origin, from, to string) ([]internal.SleepSample, error) {
	s.mu.RLock()
	samples := make([]internal.SleepSample, 0)
	for date, sample := range s.samples[origin] {
		if date >= from && date <= to {
			samples = append(samples, *sample)
		}
	}
	s.mu.RUnlock()

	sort.Slice(samples, func(i, j int) bool { return samples[i].Date > samples[j].Date })
	return samples, nil
}

func (s *FileStorage) ListAllSamples(ctx context.Context, origin internal.Origin) ([]internal.SleepSample, error) {
	s.mu.RLock()
	samples := make([]internal.SleepSample, 0, len(s.samples[origin]))
	for _, sample := range s.samples[origin] {
		samples = append(samples, *sample)
	}
	s.mu.RUnlock()

	sort.Slice(samples, func(i, j int) bool { return samples[i].Date > samples[j].Date })
	return samples, nil
}

func (s *FileStorage) DeleteSamples(ctx context.Context, origin internal.Origin) (int, error) {
	s.mu.Lock()
	count := len(s.samples[origin])
	s.samples[origin] = make(map[string]*internal.SleepSample)
	s.mu.Unlock()

	signalSave(s.saveSamplesChan)
	return count, nil
}

// --- SettingsRepository ---

func (s *FileStorage) GetSettings(ctx context.Context) (*internal.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, nil
	}
	copied := *s.settings
	return &copied, nil
}

func (s *FileStorage) PutSettings(ctx context.Context, settings *internal.UserSettings) error {
	s.mu.Lock()
	copied := *settings
	s.settings = &copied
	s.mu.Unlock()

	signalSave(s.saveStateChan)
	return nil
}

// --- SyncStateRepository ---

func (s *FileStorage) GetLastSync(ctx context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSync == nil {
		return nil, nil
	}
	t := *s.lastSync
	return &t, nil
}

func (s *FileStorage) SetLastSync(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	s.lastSync = &t
	s.mu.Unlock()

	signalSave(s.saveStateChan)
	return nil
}

// --- Compile-time assertions ---
var _ SampleRepository = (*FileStorage)(nil)
var _ SettingsRepository = (*FileStorage)(nil)
var _ SyncStateRepository = (*FileStorage)(nil)
