package split

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitease/internal/core"
)

func member(name string, selected bool) SplitInput {
	return SplitInput{MemberID: uuid.New(), Name: name, Selected: selected}
}

func amount(v float64) *float64 { return &v }

func TestEqualSplit(t *testing.T) {
	t.Run("three members share ninety", func(t *testing.T) {
		allocs, err := EqualSplit(90, []SplitInput{member("A", true), member("B", true), member("C", true)})
		require.NoError(t, err)
		require.Len(t, allocs, 3)
		for _, a := range allocs {
			assert.Equal(t, 30.0, a.Amount)
		}
		assert.Equal(t, []string{"A", "B", "C"}, names(allocs))
	})

	t.Run("unselected members are left out", func(t *testing.T) {
		allocs, err := EqualSplit(100, []SplitInput{member("A", true), member("B", false), member("C", true)})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, names(allocs))
		assert.Equal(t, 50.0, allocs[0].Amount)
	})

	t.Run("nobody selected", func(t *testing.T) {
		_, err := EqualSplit(100, []SplitInput{member("A", false)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))

		var inv *core.InvalidInputError
		require.True(t, errors.As(err, &inv))
		assert.Equal(t, 0, inv.Count)
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := EqualSplit(100, nil)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	})

	t.Run("negative total", func(t *testing.T) {
		_, err := EqualSplit(-1, []SplitInput{member("A", true)})
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	})
}

func TestEqualSplit_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(12)
		total := math.Round(rng.Float64()*1_000_000) / 100

		inputs := make([]SplitInput, n)
		for j := range inputs {
			inputs[j] = member("m", true)
		}

		allocs, err := EqualSplit(total, inputs)
		require.NoError(t, err)

		var sum float64
		for _, a := range allocs {
			sum += a.Amount
		}
		assert.InDelta(t, total, sum, 1e-6, "total=%v n=%d", total, n)
	}
}

func TestValidateCustomSplit(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("half a cent off is accepted", func(t *testing.T) {
		err := ValidateCustomSplit(100, []Allocation{{MemberID: a, Name: "Alice", Amount: 40}, {MemberID: b, Name: "Bob", Amount: 59.995}})
		assert.NoError(t, err)
	})

	t.Run("ten short is rejected with the difference", func(t *testing.T) {
		err := ValidateCustomSplit(100, []Allocation{{MemberID: a, Name: "Alice", Amount: 40}, {MemberID: b, Name: "Bob", Amount: 50}})
		require.Error(t, err)

		var mismatch *core.SplitMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.InDelta(t, 10.0, math.Abs(mismatch.Difference), 1e-9)
		assert.InDelta(t, 90.0, mismatch.Sum, 1e-9)
		assert.Equal(t, 100.0, mismatch.Total)
	})

	t.Run("over by more than a cent", func(t *testing.T) {
		err := ValidateCustomSplit(100, []Allocation{{MemberID: a, Amount: 50.02}, {MemberID: b, Amount: 50}})
		assert.True(t, errors.Is(err, core.ErrSplitMismatch))
	})

	t.Run("no allocations", func(t *testing.T) {
		err := ValidateCustomSplit(100, nil)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	})

	t.Run("negative allocation", func(t *testing.T) {
		err := ValidateCustomSplit(0, []Allocation{{MemberID: a, Amount: -5}, {MemberID: b, Amount: 5}})
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestFactory_Create(t *testing.T) {
	f := NewSplitStrategyFactory()

	tests := []struct {
		in      string
		want    SplitType
		wantErr bool
	}{
		{"EVEN", SplitTypeEven, false},
		{"EXACT", SplitTypeExact, false},
		{"PERCENTAGE", SplitTypePercentage, false},
		{"SHARES", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := f.CreateFromString(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSplitType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Type())
		})
	}
}

func TestExactStrategy(t *testing.T) {
	s := &ExactStrategy{}

	alice := member("Alice", true)
	alice.Amount = amount(40)
	bob := member("Bob", true)
	bob.Amount = amount(60)
	carol := member("Carol", false)

	allocs, err := s.Allocate(100, []SplitInput{alice, bob, carol})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names(allocs))
	assert.Equal(t, 60.0, allocs[1].Amount)

	bob.Amount = amount(50)
	_, err = s.Allocate(100, []SplitInput{alice, bob})
	assert.ErrorIs(t, err, core.ErrSplitMismatch)

	bob.Amount = nil
	assert.ErrorIs(t, s.Validate(100, []SplitInput{alice, bob}), ErrMissingExactAmount)

	dup := alice
	assert.ErrorIs(t, s.Validate(80, []SplitInput{alice, dup}), ErrDuplicateParticipant)
}

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}

	alice := member("Alice", true)
	alice.Percentage = amount(25)
	bob := member("Bob", true)
	bob.Percentage = amount(75)

	allocs, err := s.Allocate(200, []SplitInput{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, 50.0, allocs[0].Amount)
	assert.Equal(t, 150.0, allocs[1].Amount)

	bob.Percentage = amount(70)
	assert.ErrorIs(t, s.Validate(200, []SplitInput{alice, bob}), ErrInvalidPercentages)

	bob.Percentage = amount(120)
	assert.ErrorIs(t, s.Validate(200, []SplitInput{alice, bob}), ErrPercentageOutOfRange)

	bob.Percentage = nil
	assert.ErrorIs(t, s.Validate(200, []SplitInput{alice, bob}), ErrMissingPercentage)
}

func TestEvenStrategy(t *testing.T) {
	s := &EvenStrategy{}

	allocs, err := s.Allocate(10, []SplitInput{member("A", true), member("B", true), member("C", true)})
	require.NoError(t, err)
	require.Len(t, allocs, 3)
	assert.NoError(t, ValidateCustomSplit(10, allocs))

	_, err = s.Allocate(10, []SplitInput{member("A", false)})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func names(allocs []Allocation) []string {
	out := make([]string, len(allocs))
	for i, a := range allocs {
		out[i] = a.Name
	}
	return out
}

func TestStrategies_RejectBadTotal(t *testing.T) {
	hundred, fifty := 100.0, 50.0
	participants := []SplitInput{
		{MemberID: uuid.New(), Name: "Priya", Selected: true, Amount: &fifty, Percentage: &hundred},
	}
	f := NewSplitStrategyFactory()

	for _, st := range []SplitType{SplitTypeEven, SplitTypeExact, SplitTypePercentage} {
		for _, total := range []float64{-10, math.NaN(), math.Inf(1)} {
			strategy, err := f.Create(st)
			require.NoError(t, err)

			_, err = strategy.Allocate(total, participants)
			var invalid *core.InvalidInputError
			require.True(t, errors.As(err, &invalid), "%s with total %v: %v", st, total, err)
			assert.Equal(t, 1, invalid.Count)
		}
	}
}
