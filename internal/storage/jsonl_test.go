package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"poolscout/internal/model"
)

func TestJsonlStorageAppendsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.jsonl")
	sink := NewJsonlStorage(path)

	observed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	first := model.PoolSnapshot{
		Chain:        model.ChainEthereum,
		Network:      "mainnet",
		PoolAddress:  "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
		Token0:       "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Token1:       "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		Fee:          500,
		Liquidity:    "36444926005602097791",
		Tick:         -191234,
		SqrtPriceX96: "1843687747683178667403638871347251",
		ObservedAt:   observed,
	}
	second := first
	second.Fee = 3000
	second.PoolAddress = "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8"

	if err := sink.PutSnapshotBatch([]model.PoolSnapshot{first}); err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if err := sink.PutSnapshotBatch([]model.PoolSnapshot{second}); err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var lines []model.PoolSnapshot
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snapshot model.PoolSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &snapshot); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		lines = append(lines, snapshot)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Liquidity != "36444926005602097791" {
		t.Fatalf("liquidity string mutated: %s", lines[0].Liquidity)
	}
	if lines[1].Fee != 3000 {
		t.Fatalf("second snapshot fee wrong: %d", lines[1].Fee)
	}
}

func TestJsonlStorageEmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutSnapshotBatch(nil); err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch should not create the file")
	}
}
