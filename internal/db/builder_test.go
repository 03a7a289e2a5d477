package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("trips").
		Asc("category").
		Asc("price").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Collection != "trips" {
		t.Errorf("collection = %q, want trips", idx.Collection)
	}
	if len(idx.Keys) != 2 {
		t.Fatalf("keys count = %d, want 2", len(idx.Keys))
	}
	if idx.Keys[0] != (IndexKey{Field: "category", Kind: IndexAsc}) {
		t.Errorf("key[0] = %+v, want category 1", idx.Keys[0])
	}
	if idx.EffectiveName() != "category_1_price_1" {
		t.Errorf("name = %q, want category_1_price_1", idx.EffectiveName())
	}
}

func TestIndexBuilder_Options(t *testing.T) {
	idx := NewIndex("sessions").
		Asc("createdAt").
		Named("session_ttl").
		TTL(604800).
		Sparse().
		MustBuild()

	if idx.Name != "session_ttl" {
		t.Errorf("name = %q", idx.Name)
	}
	if idx.ExpireAfterSeconds == nil || *idx.ExpireAfterSeconds != 604800 {
		t.Errorf("ttl = %v, want 604800", idx.ExpireAfterSeconds)
	}
	if !idx.Sparse {
		t.Error("expected sparse")
	}
}

func TestIndexBuilder_Text(t *testing.T) {
	idx := NewIndex("trips").Text("title", "description").MustBuild()

	if len(idx.Keys) != 2 {
		t.Fatalf("keys count = %d, want 2", len(idx.Keys))
	}
	for _, k := range idx.Keys {
		if k.Kind != IndexText {
			t.Errorf("key %s kind = %q, want text", k.Field, k.Kind)
		}
	}
	if idx.DefaultName() != "title_text_description_text" {
		t.Errorf("name = %q", idx.DefaultName())
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
	}{
		{"no collection", NewIndex("").Asc("a")},
		{"no keys", NewIndex("trips")},
		{"empty field", NewIndex("trips").Asc("")},
		{"duplicate field", NewIndex("trips").Asc("a").Desc("a")},
		{"bad kind", NewIndex("trips").Key("a", "2d")},
		{"ttl compound", NewIndex("sessions").Asc("a").Asc("b").TTL(10)},
		{"ttl text", NewIndex("sessions").Text("a").TTL(10)},
		{"ttl negative", NewIndex("sessions").Asc("a").TTL(-5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.b.Build(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("trips").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("users").Asc("email").Unique().MustBuild()
	s := idx.String()

	for _, want := range []string{"createIndexes", "users", "{email: 1}", "name=email_1", "unique"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestIndexDefinition_Equivalent(t *testing.T) {
	ttl := int32(604800)
	other := int32(60)

	tests := []struct {
		name string
		def  *IndexDefinition
		info IndexInfo
		want bool
		keys bool
	}{
		{
			name: "same keys and options",
			def:  NewIndex("bookings").Asc("status").Asc("checkInDate").MustBuild(),
			info: IndexInfo{Name: "status_1_checkInDate_1", Keys: []IndexKey{{"status", IndexAsc}, {"checkInDate", IndexAsc}}},
			want: true, keys: true,
		},
		{
			name: "different name is still equivalent",
			def:  NewIndex("bookings").Asc("status").MustBuild(),
			info: IndexInfo{Name: "by_status", Keys: []IndexKey{{"status", IndexAsc}}},
			want: true, keys: true,
		},
		{
			name: "order differs",
			def:  NewIndex("bookings").Asc("status").Asc("checkInDate").MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"checkInDate", IndexAsc}, {"status", IndexAsc}}},
			want: false, keys: false,
		},
		{
			name: "direction differs",
			def:  NewIndex("bookings").Asc("createdAt").MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"createdAt", IndexDesc}}},
			want: false, keys: false,
		},
		{
			name: "unique differs",
			def:  NewIndex("users").Asc("email").Unique().MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"email", IndexAsc}}},
			want: false, keys: true,
		},
		{
			name: "ttl equal",
			def:  NewIndex("sessions").Asc("createdAt").TTL(ttl).MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"createdAt", IndexAsc}}, ExpireAfterSeconds: &ttl},
			want: true, keys: true,
		},
		{
			name: "ttl differs",
			def:  NewIndex("sessions").Asc("createdAt").TTL(ttl).MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"createdAt", IndexAsc}}, ExpireAfterSeconds: &other},
			want: false, keys: true,
		},
		{
			name: "ttl missing",
			def:  NewIndex("sessions").Asc("createdAt").TTL(ttl).MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"createdAt", IndexAsc}}},
			want: false, keys: true,
		},
		{
			name: "text fields as set",
			def:  NewIndex("trips").Text("title", "description").MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"description", IndexText}, {"title", IndexText}}},
			want: true, keys: true,
		},
		{
			name: "text fields differ",
			def:  NewIndex("trips").Text("title", "description").MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"title", IndexText}}},
			want: false, keys: false,
		},
		{
			name: "geo",
			def:  NewIndex("trips").Geo2DSphere("location").MustBuild(),
			info: IndexInfo{Keys: []IndexKey{{"location", Index2DSphere}}},
			want: true, keys: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.def.Equivalent(tc.info); got != tc.want {
				t.Errorf("Equivalent() = %v, want %v", got, tc.want)
			}
			if got := tc.def.SameKeys(tc.info); got != tc.keys {
				t.Errorf("SameKeys() = %v, want %v", got, tc.keys)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Op: OpCreateIndexes, Code: CodeIndexOptionsConflict, Err: ErrIndexConflict}
	if !strings.Contains(e.Error(), "createIndexes (code 85)") {
		t.Errorf("Error() = %q", e.Error())
	}
	plain := &Error{Op: OpPing, Err: ErrUnavailable}
	if plain.Error() != "ping: db: unavailable" {
		t.Errorf("Error() = %q", plain.Error())
	}
}
