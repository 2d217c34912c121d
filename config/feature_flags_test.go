package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

func TestFeatureFlags_DefaultsOn(t *testing.T) {
	ff := NewFeatureFlags()
	for _, name := range []string{
		shared.FeatureAchievements, shared.FeatureDailyTasks, shared.FeatureKnowledgeGraph,
		shared.FeatureChallenges, shared.FeaturePet, shared.FeatureTeam,
	} {
		assert.True(t, ff.IsEnabledFor(name, "u1"), name)
	}
	assert.False(t, ff.IsEnabledFor("gamification.unknown", "u1"))
}

func TestFeatureFlags_EnvironmentOverrides(t *testing.T) {
	env := map[string]string{
		"FEATURE_GAMIFICATION_PET":        "false",
		"FEATURE_GAMIFICATION_TEAM":       "0",
		"FEATURE_GAMIFICATION_CHALLENGES": "garbage",
	}
	ff := NewFeatureFlags()
	ff.loadFromEnvironment(func(k string) string { return env[k] })

	assert.False(t, ff.IsEnabledFor(shared.FeaturePet, "u1"))
	assert.False(t, ff.IsEnabledFor(shared.FeatureTeam, "u1"))
	assert.True(t, ff.IsEnabledFor(shared.FeatureChallenges, "u1"))
}

func TestFeatureFlags_RolloutIsStablePerUser(t *testing.T) {
	ff := NewFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(shared.FeatureTeam, 30))

	enabled := 0
	for i := 0; i < 1000; i++ {
		user := fmt.Sprintf("user-%d", i)
		first := ff.IsEnabledFor(shared.FeatureTeam, user)
		assert.Equal(t, first, ff.IsEnabledFor(shared.FeatureTeam, user))
		if first {
			enabled++
		}
	}
	assert.InDelta(t, 300, enabled, 80)
}

func TestFeatureFlags_UserOverride(t *testing.T) {
	ff := NewFeatureFlags()
	require.NoError(t, ff.DisableFeature(shared.FeaturePet))

	ff.SetUserOverride("tester", shared.FeaturePet, true)
	assert.True(t, ff.IsEnabledFor(shared.FeaturePet, "tester"))
	assert.False(t, ff.IsEnabledFor(shared.FeaturePet, "other"))

	ff.ClearUserOverrides("tester")
	assert.False(t, ff.IsEnabledFor(shared.FeaturePet, "tester"))
}

func TestFeatureFlags_SetRolloutPercent(t *testing.T) {
	ff := NewFeatureFlags()
	assert.ErrorIs(t, ff.SetRolloutPercent("nope", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(shared.FeaturePet, 101), ErrInvalidRolloutPercent)

	require.NoError(t, ff.EnableFeature(shared.FeaturePet))
	assert.Equal(t, 100, ff.GetAllFeatures()[shared.FeaturePet].RolloutPercent)
}
