// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"

	"soundbot/datastore"
)

type Storage struct {
	ds *datastore.DataStore
}

// Audio sources: a Discord attachment URL or a YouTube link.
const (
	SourceDiscord = "discord"
	SourceYouTube = "youtube"
)

// AudioRange bounds a clip inside a longer source, in seconds.
type AudioRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type AudioInfo struct {
	Command  string      `json:"command"`
	URL      string      `json:"url"`
	Source   string      `json:"source"` // "discord" or "youtube"
	FileType string      `json:"file_type,omitempty"`
	Time     *AudioRange `json:"time,omitempty"`
}

type Record struct {
	Prefix        string               `json:"prefix,omitempty"`
	AudioCommands map[string]AudioInfo `json:"audio_commands"` // key = command name
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{
			AudioCommands: map[string]AudioInfo{},
		}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	err = json.Unmarshal(jsonData, &record)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if record.AudioCommands == nil {
		record.AudioCommands = map[string]AudioInfo{}
	}

	return &record, nil
}

// GuildPrefix returns the stored command prefix for a guild, or "" if unset.
func (s *Storage) GuildPrefix(guildID string) (string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Prefix, nil
}

// ResetGuild drops everything stored for a guild: the prefix override and
// all audio commands. Other guilds are untouched.
func (s *Storage) ResetGuild(guildID string) {
	s.ds.Delete(guildID)
}

func (s *Storage) SetGuildPrefix(guildID, prefix string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.Prefix = prefix
	s.ds.Add(guildID, record)
	return nil
}
