package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/volumetracker/internal/fitness"

	"github.com/coocood/freecache"
)

const DefaultSummaryCacheSizeMB = 8

// SummaryStore holds the last fetched summary per user. A put replaces the
// previous value wholesale, nothing is merged.
type SummaryStore struct {
	cache         *freecache.Cache
	expireSeconds int
}

func NewSummaryStore(sizeMB int, expireSeconds int) *SummaryStore {
	if sizeMB <= 0 {
		sizeMB = DefaultSummaryCacheSizeMB
	}
	return &SummaryStore{
		cache:         freecache.NewCache(sizeMB * 1024 * 1024),
		expireSeconds: expireSeconds,
	}
}

func (s *SummaryStore) Put(user string, summary *fitness.Summary) error {
	if summary == nil {
		return errors.New("nil summary")
	}
	summaryBytes, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return s.cache.Set([]byte(user), summaryBytes, s.expireSeconds)
}

// Get returns a fresh copy, callers can't reach the stored value.
func (s *SummaryStore) Get(user string) (*fitness.Summary, bool) {
	summaryBytes, err := s.cache.Get([]byte(user))
	if err != nil {
		return nil, false
	}
	summary := &fitness.Summary{}
	if err := json.Unmarshal(summaryBytes, summary); err != nil {
		return nil, false
	}
	return summary, true
}

func (s *SummaryStore) Delete(user string) {
	s.cache.Del([]byte(user))
}

func (s *SummaryStore) entryCount() int64 {
	return s.cache.EntryCount()
}
