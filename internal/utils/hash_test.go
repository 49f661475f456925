package utils

import "testing"

func TestFileHash(t *testing.T) {
    // Known SHA-256 of "abc".
    const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
    if got := FileHash([]byte("abc")); got != want {
        t.Fatalf("FileHash(\"abc\") = %s, want %s", got, want)
    }
}

func TestFileHashDistinguishesContent(t *testing.T) {
    a := FileHash([]byte("photo-a"))
    b := FileHash([]byte("photo-b"))
    if a == b {
        t.Fatal("different contents produced the same hash")
    }
    if a != FileHash([]byte("photo-a")) {
        t.Fatal("hash is not deterministic")
    }
}

func TestHashRefreshRawStable(t *testing.T) {
    raw := "0011aabb"
    if HashRefreshRaw(raw) != HashRefreshRaw(raw) {
        t.Fatal("refresh token hash is not deterministic")
    }
    if HashRefreshRaw(raw) == HashRefreshRaw(raw+"x") {
        t.Fatal("distinct tokens collided")
    }
}
