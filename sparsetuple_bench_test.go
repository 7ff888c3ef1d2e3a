package sparsetuple

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func BenchmarkNew(b *testing.B) {
	typ := newPerson(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = typ.New(F("username", "ada"), F("state", "NY"))
	}
}

// Dense baseline: what a fully materialized record costs.
func BenchmarkDenseBaseline(b *testing.B) {
	n := len(personFields)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		v := make([]any, n)
		v[0], v[5] = "ada", "NY"
		_ = v
	}
}

func BenchmarkGet(b *testing.B) {
	typ := newPerson(b)
	r, err := typ.New(F("username", "ada"), F("state", "NY"))
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Get(i % 8)
	}
}

func BenchmarkField(b *testing.B) {
	typ := newPerson(b)
	r, err := typ.New(F("username", "ada"), F("state", "NY"))
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Field("state")
	}
}

func BenchmarkReplace(b *testing.B) {
	typ := newPerson(b)
	r, err := typ.New(F("username", "ada"), F("state", "NY"))
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Replace(F("state", Empty), F("zip", i))
	}
}

func BenchmarkString(b *testing.B) {
	typ := newPerson(b)
	r, err := typ.New(F("username", "ada"), F("state", "NY"))
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.String()
	}
}

func BenchmarkFromStruct(b *testing.B) {
	typ := contactType(b)
	ny := "NY"
	c := contact{Username: "ada", State: &ny}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = typ.FromStruct(c)
	}
}

func BenchmarkYaml(b *testing.B) {
	typ := newPerson(b)
	r, err := typ.New(F("username", "ada"), F("state", "NY"))
	require.NoError(b, err)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = yaml.Marshal(r)
	}
}
