package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"journal-desk/models"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/blake2b"
)

const DefaultAutosaveInterval = 30 * time.Second

type autosaveJob struct {
	entry  cron.EntryID
	key    models.DraftKey
	source func() models.DraftSnapshot
	onSave func(*models.Draft)
	last   [blake2b.Size256]byte
}

// Autosaver periodically saves watched forms. A tick is skipped when the form
// is empty or unchanged since the last save.
type Autosaver struct {
	drafts   *DraftService
	cron     *cron.Cron
	interval time.Duration

	mu   sync.Mutex
	jobs map[string]*autosaveJob
}

func NewAutosaver(drafts *DraftService, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		drafts:   drafts,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		interval: interval,
		jobs:     map[string]*autosaveJob{},
	}
}

func (a *Autosaver) Start() {
	a.cron.Start()
}

// Stop halts the scheduler and waits for running saves.
func (a *Autosaver) Stop() {
	<-a.cron.Stop().Done()
}

// Watch schedules saves of source under key for the watcher id. Several
// watchers may share a key; each keeps its own job. Watching an id again
// replaces its earlier job.
func (a *Autosaver) Watch(id string, key models.DraftKey, source func() models.DraftSnapshot, onSave func(*models.Draft)) error {
	a.Unwatch(id)

	job := &autosaveJob{key: key, source: source, onSave: onSave}
	entry, err := a.cron.AddFunc(fmt.Sprintf("@every %s", a.interval), func() {
		a.run(job)
	})
	if err != nil {
		return err
	}
	job.entry = entry

	a.mu.Lock()
	a.jobs[id] = job
	a.mu.Unlock()
	return nil
}

func (a *Autosaver) Unwatch(id string) {
	a.mu.Lock()
	job, ok := a.jobs[id]
	delete(a.jobs, id)
	a.mu.Unlock()
	if ok {
		a.cron.Remove(job.entry)
	}
}

func (a *Autosaver) Watching(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.jobs[id]
	return ok
}

// RunNow performs one autosave tick for id and reports whether it saved.
func (a *Autosaver) RunNow(id string) bool {
	a.mu.Lock()
	job, ok := a.jobs[id]
	a.mu.Unlock()
	if !ok {
		return false
	}
	return a.run(job)
}

// MarkSaved records snap as saved by id so its next tick skips it.
func (a *Autosaver) MarkSaved(id string, snap models.DraftSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if job, ok := a.jobs[id]; ok {
		job.last = fingerprint(snap)
	}
}

func (a *Autosaver) run(job *autosaveJob) bool {
	snap := job.source()
	if snap.Empty() {
		return false
	}
	sum := fingerprint(snap)

	a.mu.Lock()
	unchanged := sum == job.last
	a.mu.Unlock()
	if unchanged {
		return false
	}

	draft, err := a.drafts.Save(context.Background(), job.key, snap)
	if err != nil {
		log.Printf("[Autosaver] %s: %v", job.key, err)
		return false
	}

	a.mu.Lock()
	job.last = sum
	a.mu.Unlock()
	if job.onSave != nil {
		job.onSave(draft)
	}
	return true
}

func fingerprint(snap models.DraftSnapshot) [blake2b.Size256]byte {
	raw, _ := json.Marshal(snap)
	return blake2b.Sum256(raw)
}
