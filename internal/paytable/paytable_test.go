package paytable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTablesValid(t *testing.T) {
	for _, name := range BuiltinNames() {
		pt := Builtin(name)
		require.NotNil(t, pt, "builtin %q", name)
		required, err := Categories(pt.Ruleset)
		require.NoError(t, err)
		for _, cat := range required {
			assert.GreaterOrEqual(t, pt.Payout(cat), 0)
		}
	}
	assert.Nil(t, Builtin("no-such-table"))
}

func TestJacksOrBetter96Payouts(t *testing.T) {
	pt := JacksOrBetter96()
	assert.Equal(t, 800, pt.Payout(RoyalFlush))
	assert.Equal(t, 9, pt.Payout(FullHouse))
	assert.Equal(t, 6, pt.Payout(Flush))
	assert.Equal(t, 1, pt.Payout(JacksOrBetterPair))
	assert.Equal(t, 0, pt.Payout(Nothing))
}

func TestParseValidYAML(t *testing.T) {
	data := []byte(`
name: Test 9/6
ruleset: jacks_or_better
bet_unit: 5
payouts:
  royal_flush: 800
  straight_flush: 50
  four_aces_234: 25
  four_aces: 25
  four_low_ace: 25
  four_234: 25
  four_of_a_kind: 25
  full_house: 9
  flush: 6
  straight: 4
  three_of_a_kind: 3
  two_pair: 2
  jacks_or_better: 1
`)
	pt, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Test 9/6", pt.Name)
	assert.Equal(t, 5, pt.BetUnit)
	assert.Equal(t, RulesetJacksOrBetter, pt.Ruleset)
	// "nothing" defaults to 0 when omitted.
	assert.Equal(t, 0, pt.Payout(Nothing))
}

func TestParseMissingCategory(t *testing.T) {
	data := []byte(`
name: Broken
ruleset: jacks_or_better
payouts:
  royal_flush: 800
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestParseUnknownCategory(t *testing.T) {
	data := []byte(`
name: Broken
payouts:
  six_of_a_kind: 9999
`)
	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestParseUnknownRuleset(t *testing.T) {
	data := []byte(`
name: Broken
ruleset: five_card_stud
payouts:
  royal_flush: 800
`)
	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestParseForeignRulesetCategory(t *testing.T) {
	// A deuces-only category inside a jacks-or-better table is rejected.
	data := []byte(`
name: Mixed
ruleset: jacks_or_better
payouts:
  royal_flush: 800
  straight_flush: 50
  four_aces_234: 25
  four_aces: 25
  four_low_ace: 25
  four_234: 25
  four_of_a_kind: 25
  full_house: 9
  flush: 6
  straight: 4
  three_of_a_kind: 3
  two_pair: 2
  jacks_or_better: 1
  four_deuces: 200
`)
	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestNewNegativePayout(t *testing.T) {
	pt := JacksOrBetter96()
	payouts := map[Category]int{}
	for _, e := range pt.Entries() {
		payouts[e.Category] = e.Payout
	}
	payouts[Flush] = -1
	_, err := New("neg", RulesetJacksOrBetter, 1, payouts)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestNothingMustPayZero(t *testing.T) {
	pt := JacksOrBetter96()
	payouts := map[Category]int{}
	for _, e := range pt.Entries() {
		payouts[e.Category] = e.Payout
	}
	payouts[Nothing] = 1
	_, err := New("pay-for-nothing", RulesetJacksOrBetter, 1, payouts)
	assert.True(t, errors.Is(err, ErrInvalidPayTable))
}

func TestCategoryKeyRoundTrip(t *testing.T) {
	for _, rs := range []Ruleset{RulesetJacksOrBetter, RulesetDeucesWildBonus} {
		cats, err := Categories(rs)
		require.NoError(t, err)
		for _, cat := range cats {
			got, err := CategoryFromKey(cat.Key())
			require.NoError(t, err)
			assert.Equal(t, cat, got)
			assert.NotEmpty(t, cat.Label())
		}
	}
}

func TestCategoryAliases(t *testing.T) {
	cat, err := CategoryFromKey("natural_royal_flush")
	require.NoError(t, err)
	assert.Equal(t, RoyalFlush, cat)
}
