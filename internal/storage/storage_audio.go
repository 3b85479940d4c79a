// /internal/storage/storage_audio.go
package storage

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrCommandExists   = errors.New("audio command already exists")
	ErrCommandNotFound = errors.New("audio command not found")
)

// StoreAudioCommand stores a new audio command for a guild. Adding a command
// that already exists fails with ErrCommandExists; callers should steer the
// user toward the update path instead of overwriting.
//
// Reads and writes of the guild record are not transactional: two concurrent
// adds for the same command can race and the last write wins.
func (s *Storage) StoreAudioCommand(guildID string, audio AudioInfo) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	if _, exists := record.AudioCommands[audio.Command]; exists {
		return fmt.Errorf("%w: %s", ErrCommandExists, audio.Command)
	}

	record.AudioCommands[audio.Command] = audio
	s.ds.Add(guildID, record)
	return nil
}

// UpdateAudioCommand overwrites an existing audio command.
func (s *Storage) UpdateAudioCommand(guildID string, audio AudioInfo) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	if _, exists := record.AudioCommands[audio.Command]; !exists {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, audio.Command)
	}

	record.AudioCommands[audio.Command] = audio
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) GetAudioCommand(guildID, command string) (*AudioInfo, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	audio, exists := record.AudioCommands[command]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, command)
	}

	return &audio, nil
}

// ListAudioCommands returns all audio commands for a guild sorted by name.
func (s *Storage) ListAudioCommands(guildID string) ([]AudioInfo, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	list := make([]AudioInfo, 0, len(record.AudioCommands))
	for _, audio := range record.AudioCommands {
		list = append(list, audio)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Command < list[j].Command
	})
	return list, nil
}
