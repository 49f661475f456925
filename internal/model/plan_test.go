package model

import (
    "reflect"
    "testing"
)

func TestAllows(t *testing.T) {
    open := SubGoal{}
    if !open.Allows(EvidencePhoto) || !open.Allows(EvidenceAPI) {
        t.Fatal("empty allow-set must accept every type")
    }

    restricted := SubGoal{AllowedTypes: []string{EvidencePhoto, EvidenceText}}
    if !restricted.Allows("photo") {
        t.Fatal("allow check must be case-insensitive")
    }
    if restricted.Allows(EvidenceEmail) {
        t.Fatal("EMAIL accepted despite restricted allow-set")
    }
}

func TestTypesRoundTrip(t *testing.T) {
    in := []string{" photo", "VIDEO ", "", "text"}
    raw := JoinTypes(in)
    if raw != "PHOTO,VIDEO,TEXT" {
        t.Fatalf("JoinTypes = %q", raw)
    }
    out := SplitTypes(raw)
    want := []string{"PHOTO", "VIDEO", "TEXT"}
    if !reflect.DeepEqual(out, want) {
        t.Fatalf("SplitTypes = %v, want %v", out, want)
    }

    if SplitTypes("") != nil {
        t.Fatal("empty column must parse to nil (all types allowed)")
    }
}

func TestBinaryEvidenceType(t *testing.T) {
    for _, bt := range []string{EvidencePhoto, EvidenceVideo, EvidenceAppCapture, EvidenceBiometric} {
        if !BinaryEvidenceType(bt) {
            t.Errorf("%s should be binary", bt)
        }
    }
    for _, st := range []string{EvidenceText, EvidenceEmail, EvidenceAPI, "UNKNOWN"} {
        if BinaryEvidenceType(st) {
            t.Errorf("%s should not be binary", st)
        }
    }
}
