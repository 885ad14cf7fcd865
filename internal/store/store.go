/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package store is the persistence half of the "out of scope"
// persistence store contract (spec.md §1/§6), a concrete BadgerDB
// adapter implementing instance.Store — the same embedded key/value
// engine the teacher engine uses for process-instance and timer
// persistence.
package store

import (
	"encoding/json"
	"fmt"

	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/state"

	"github.com/dgraph-io/badger/v4"
)

// documentKeyPrefix namespaces every persisted document by process
// name, so LoadAll can range over exactly one definition's instances.
const documentKeyPrefix = "bpmn:document:"

// BadgerStore persists process documents in an embedded BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log corelog.ComponentLogger
}

// Open opens (creating if necessary) a BadgerDB at dir.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store at %q: %w", dir, err)
	}
	return &BadgerStore{db: db, log: corelog.NewComponentLogger("store")}, nil
}

func documentKey(processName, processID string) []byte {
	return []byte(documentKeyPrefix + processName + ":" + processID)
}

func documentPrefix(processName string) []byte {
	return []byte(documentKeyPrefix + processName + ":")
}

// Persist writes doc, replacing any prior record under the same
// (processName, processId). One badger transaction per call, matching
// §5's "at most one outstanding persist per main instance" — callers
// (the instance package) already serialize this via deferEvents.
func (s *BadgerStore) Persist(doc *state.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s/%s: %w", doc.ProcessName, doc.ProcessID, err)
	}
	key := documentKey(doc.ProcessName, doc.ProcessID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Load returns the persisted document for one process instance, or
// (nil, nil) if none exists.
func (s *BadgerStore) Load(processName, processID string) (*state.Document, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(processName, processID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %s/%s: %w", processName, processID, err)
	}
	var doc state.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document %s/%s: %w", processName, processID, err)
	}
	return &doc, nil
}

// LoadAll returns every persisted document for processName, in no
// particular order — the manager's load pass builds its own
// duplicate-id check over the result.
func (s *BadgerStore) LoadAll(processName string) ([]*state.Document, error) {
	var docs []*state.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := documentPrefix(processName)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var data []byte
			if err := item.Value(func(val []byte) error {
				data = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return fmt.Errorf("reading document value: %w", err)
			}
			var doc state.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				s.log.Error("skipping unreadable persisted document", corelog.String("key", string(item.Key())), corelog.Any("error", err))
				continue
			}
			docs = append(docs, &doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading all documents for %q: %w", processName, err)
	}
	return docs, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
