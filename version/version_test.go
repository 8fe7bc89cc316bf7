package version

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantLen int
		wantErr bool
	}{
		{"1", "1", 1, false},
		{"8.10.2", "8.10.2", 3, false},
		{"4.14.3.0", "4.14.3.0", 4, false},
		{"08.010", "8.10", 2, false},
		{"0", "0", 1, false},

		{"", "", 0, true},
		{"1..2", "", 0, true},
		{".1", "", 0, true},
		{"1.", "", 0, true},
		{"1.0-rc1", "", 0, true},
		{"v1.0", "", 0, true},
		{"1.a", "", 0, true},
		{"99999999999999999999999", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("Parse(%q) error type = %T, want *ParseError", tt.input, err)
				}
				return
			}
			if v.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, v.String(), tt.want)
			}
			if v.Len() != tt.wantLen {
				t.Errorf("Parse(%q).Len() = %d, want %d", tt.input, v.Len(), tt.wantLen)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"1.0.0", "1.0.0", 0},
		{"8.10.2", "8.8.4", 1},
		{"9.2.1", "8.10.7", 1},
		{"4.14", "4.14.0", -1},
		{"4.14.0", "4.14", 1},
		{"4.14.0", "4.14.0.0", -1},
		{"4.9", "4.14", -1},
		{"0", "0.0", -1},
		{"010", "10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := Compare(MustParse(tt.a), MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareZeroValue(t *testing.T) {
	var zero Version
	if !zero.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if Compare(zero, Lowest) >= 0 {
		t.Error("zero value should sort before the lowest valid version")
	}
	if Lowest.IsZero() {
		t.Error("Lowest should not be the zero value")
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1", "1.0"},
		{"4.14", "4.14.0"},
		{"8.10.2", "8.10.2.0"},
	}
	for _, tt := range tests {
		v := MustParse(tt.in)
		got := v.Next()
		if got.String() != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.in, got, tt.want)
		}
		if Compare(v, got) >= 0 {
			t.Errorf("%s.Next() should sort after %s", tt.in, tt.in)
		}
	}
}

func TestBumpAt(t *testing.T) {
	tests := []struct {
		in   string
		i    int
		want string
	}{
		{"4.14.3", 1, "4.15"},
		{"4.14.3", 0, "5"},
		{"4.14.3", 2, "4.14.4"},
		{"4", 1, "4.1"},
		{"1.2", 3, "1.2.0.1"},
	}
	for _, tt := range tests {
		got := MustParse(tt.in).BumpAt(tt.i)
		if got.String() != tt.want {
			t.Errorf("%s.BumpAt(%d) = %s, want %s", tt.in, tt.i, got, tt.want)
		}
	}
}

func TestSort(t *testing.T) {
	versions := []Version{
		MustParse("9.2.1"),
		MustParse("8.10.2"),
		MustParse("8.8.4"),
		MustParse("8.10.2.0"),
		MustParse("7.10.3"),
	}
	Sort(versions)

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}
	want := []string{"7.10.3", "8.8.4", "8.10.2", "8.10.2.0", "9.2.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}

func TestMax(t *testing.T) {
	a, b := MustParse("8.10.2"), MustParse("8.8.4")
	if got := Max(a, b); !got.Equal(a) {
		t.Errorf("Max(%s, %s) = %s, want %s", a, b, got, a)
	}
	if got := Max(b, a); !got.Equal(a) {
		t.Errorf("Max(%s, %s) = %s, want %s", b, a, got, a)
	}
}

func TestSegmentsIsCopy(t *testing.T) {
	v := MustParse("1.2.3")
	segs := v.Segments()
	segs[0] = 42
	if v.String() != "1.2.3" {
		t.Errorf("mutating Segments() changed the version: %s", v)
	}
	if Compare(v, MustParse("1.2.3")) != 0 {
		t.Error("mutating Segments() changed comparison")
	}
}

func TestNewPanicsWithoutSegments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New() with no components should panic")
		}
	}()
	_ = New()
}
