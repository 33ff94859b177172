// Package history — this file contains tests for the bounded snapshot store
// and the envelope fingerprint.
//
// Package history — 本文件包含有界快照存储和信封指纹的测试。
package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/yourusername/snapcodec/pkg/codec"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// envelopeFor builds a distinct envelope per seed value.
//
// envelopeFor 按种子值构建不同的信封。
func envelopeFor(seed int) *codec.Envelope {
	return &codec.Envelope{JSON: map[string]any{"seed": seed}}
}

// TestFingerprintDeterminism verifies equal envelopes fingerprint equally
// and different envelopes differently.
//
// TestFingerprintDeterminism 验证相同信封的指纹相同，
// 不同信封的指纹不同。
func TestFingerprintDeterminism(t *testing.T) {
	a1, err := Fingerprint(envelopeFor(1))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	a2, err := Fingerprint(envelopeFor(1))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, err := Fingerprint(envelopeFor(2))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if a1 != a2 {
		t.Errorf("Equal envelopes fingerprinted %q and %q", a1, a2)
	}
	if a1 == b {
		t.Errorf("Different envelopes share fingerprint %q", a1)
	}
	if len(a1) != 16 {
		t.Errorf("Fingerprint %q has length %d, expected 16", a1, len(a1))
	}

	// Annotation side tables participate in the identity
	// 注解旁表参与身份计算
	annotated := &codec.Envelope{
		JSON: map[string]any{"seed": 1},
		Meta: &codec.Meta{Values: map[string]types.Annotation{
			"seed": types.Simple("bigint"),
		}},
	}
	c, err := Fingerprint(annotated)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if c == a1 {
		t.Error("Annotations did not change the fingerprint")
	}
}

// TestStorePutGet verifies basic storage and retrieval.
//
// TestStorePutGet 验证基本的存储和检索。
func TestStorePutGet(t *testing.T) {
	s := NewStore(Config{})
	defer s.Close()

	id, err := s.Put("test", envelopeFor(1))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Source != "test" {
		t.Errorf("Source = %q, expected %q", rec.Source, "test")
	}
	if rec.Envelope.JSON.(map[string]any)["seed"] != 1 {
		t.Errorf("Envelope = %#v", rec.Envelope)
	}

	if _, err := s.Get("missing"); err == nil {
		t.Fatal("Get(missing) succeeded, expected error")
	} else if !snaperrors.IsSnapshotNotFound(err) {
		t.Errorf("Error does not wrap ErrSnapshotNotFound: %v", err)
	}

	if _, err := s.Put("test", nil); err == nil {
		t.Error("Put(nil) succeeded, expected error")
	}
}

// TestStoreIdempotentPut verifies re-storing an identical envelope returns
// the same ID without growing the store.
//
// TestStoreIdempotentPut 验证重复存储相同信封返回相同ID
// 且不增加存储量。
func TestStoreIdempotentPut(t *testing.T) {
	s := NewStore(Config{})
	defer s.Close()

	id1, err := s.Put("a", envelopeFor(1))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	id2, err := s.Put("b", envelopeFor(1))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("IDs differ: %q vs %q", id1, id2)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, expected 1", s.Len())
	}
}

// TestStoreCapacityEviction verifies oldest-first eviction at the capacity
// bound.
//
// TestStoreCapacityEviction 验证容量上限处最旧优先的淘汰。
func TestStoreCapacityEviction(t *testing.T) {
	s := NewStore(Config{MaxSnapshots: 3, TTL: -1})
	defer s.Close()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		id, err := s.Put("test", envelopeFor(i))
		if err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
		ids = append(ids, id)
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", s.Len())
	}
	for _, old := range ids[:2] {
		if _, err := s.Get(old); err == nil {
			t.Errorf("Evicted snapshot %q still present", old)
		}
	}
	for _, kept := range ids[2:] {
		if _, err := s.Get(kept); err != nil {
			t.Errorf("Recent snapshot %q missing: %v", kept, err)
		}
	}
}

// TestStoreTTLExpiry verifies expired snapshots become unreachable.
//
// TestStoreTTLExpiry 验证过期快照不可再访问。
func TestStoreTTLExpiry(t *testing.T) {
	s := NewStore(Config{TTL: 10 * time.Millisecond, CleanInterval: time.Hour})
	defer s.Close()

	id, err := s.Put("test", envelopeFor(1))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := s.Get(id); err == nil {
		t.Error("Expired snapshot still retrievable")
	}
	records, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List returned %d expired records", len(records))
	}
}

// TestStoreListNewestFirst verifies list ordering.
//
// TestStoreListNewestFirst 验证列表排序。
func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore(Config{TTL: -1})
	defer s.Close()

	for i := 0; i < 3; i++ {
		if _, err := s.Put(fmt.Sprintf("src-%d", i), envelopeFor(i)); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List returned %d records, expected 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].StoredAt.After(records[i-1].StoredAt) {
			t.Errorf("Records not newest-first at position %d", i)
		}
	}
}

// TestStoreClose verifies operations after Close are rejected and Close is
// idempotent.
//
// TestStoreClose 验证Close后的操作被拒绝且Close是幂等的。
func TestStoreClose(t *testing.T) {
	s := NewStore(Config{})
	s.Close()
	s.Close()

	if _, err := s.Put("test", envelopeFor(1)); err == nil {
		t.Fatal("Put succeeded after Close")
	} else if !snaperrors.IsStoreClosed(err) {
		t.Errorf("Error does not wrap ErrStoreClosed: %v", err)
	}
	if _, err := s.List(); err == nil {
		t.Error("List succeeded after Close")
	}
}
