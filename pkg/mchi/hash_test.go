package mchi

import "testing"

func Test_SumHasher_Matches_Byte_Sum_Modulo_Table_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key       string
		tableSize uint64
	}{
		{"ai", 100_000},
		{"machine learning", 7},
		{"", 100_000},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			var want uint64
			for _, b := range []byte(tt.key) {
				want += uint64(b)
			}
			want %= tt.tableSize

			got := SumHasher{}.Hash([]byte(tt.key), tt.tableSize)
			if got != want {
				t.Fatalf("Hash(%q)=%d, want %d", tt.key, got, want)
			}
		})
	}
}

func Test_SumHasher_Is_Deterministic(t *testing.T) {
	t.Parallel()

	key := []byte("deterministic")
	a := SumHasher{}.Hash(key, 100_000)
	b := SumHasher{}.Hash(key, 100_000)

	if a != b {
		t.Fatalf("hash not deterministic: %d != %d", a, b)
	}
}

func Test_XXHasher_Distributes_Similar_Keys_Into_Different_Buckets(t *testing.T) {
	t.Parallel()

	h := XXHasher{}
	a := h.Hash([]byte("key0"), 100_000)
	b := h.Hash([]byte("key1"), 100_000)

	if a == b {
		t.Skip("collision between key0/key1 is possible but unlikely; not a correctness bug")
	}
}

func Test_Hashers_Return_Zero_When_Table_Size_Is_Zero(t *testing.T) {
	t.Parallel()

	if got := (SumHasher{}).Hash([]byte("x"), 0); got != 0 {
		t.Fatalf("SumHasher zero table size: got %d, want 0", got)
	}
	if got := (XXHasher{}).Hash([]byte("x"), 0); got != 0 {
		t.Fatalf("XXHasher zero table size: got %d, want 0", got)
	}
}
