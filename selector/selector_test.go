package selector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/selector"
)

type caps struct{ n3, nonN3 bool }

func (c caps) AllowsNewton3() bool    { return c.n3 }
func (c caps) AllowsNonNewton3() bool { return c.nonN3 }

func TestSelectPicksFirstApplicableCombination(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC08).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true, false).
		WithCellSizeFactors(1.0)

	plan, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.NoError(t, err)
	require.Equal(t, selector.ContainerLinkedCells, plan.Container)
	require.Equal(t, selector.TagC08, plan.Traversal)
	require.True(t, plan.Newton3)
}

func TestSelectRejectsC01WithNewton3(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC01).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.Error(t, err)
	kind, ok := aperrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aperrors.KindTraversalNotApplicable, kind)
}

func TestSelectFallsThroughToSecondCombinationWhenFirstIsStaticallyInapplicable(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC01, selector.TagC08).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	plan, err := selector.Select(cfg, caps{n3: true, nonN3: false})
	require.NoError(t, err)
	require.Equal(t, selector.TagC08, plan.Traversal, "c01 requires !N3 so it must be skipped when only N3 is configured")
}

func TestSelectAllowsC08AndSlicedWithoutNewton3(t *testing.T) {
	for _, tag := range []selector.TraversalTag{selector.TagC08, selector.TagSliced} {
		cfg := selector.NewConfiguration().
			WithContainers(selector.ContainerLinkedCells).
			WithTraversals(tag).
			WithDataLayouts(functor.LayoutAoS).
			WithNewton3(false).
			WithCellSizeFactors(1.0)

		plan, err := selector.Select(cfg, caps{n3: true, nonN3: true})
		require.NoError(t, err, "%s must be selectable without Newton3", tag)
		require.Equal(t, tag, plan.Traversal)
		require.False(t, plan.Newton3)
	}
}

func TestSelectRejectsC18WithoutNewton3(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC18).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(false).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.Error(t, err)
	kind, ok := aperrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aperrors.KindTraversalNotApplicable, kind)
}

func TestSelectRejectsSoAForVerletClusterLists(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerVerletClusterLists).
		WithTraversals(selector.TagVerletClusters).
		WithDataLayouts(functor.LayoutSoA).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.Error(t, err)
	kind, ok := aperrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aperrors.KindTraversalNotApplicable, kind)

	// with both layouts offered, Select must fall through to AoS
	cfg = selector.NewConfiguration().
		WithContainers(selector.ContainerVerletClusterLists).
		WithTraversals(selector.TagVerletClusters).
		WithDataLayouts(functor.LayoutSoA, functor.LayoutAoS).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	plan, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.NoError(t, err)
	require.Equal(t, functor.LayoutAoS, plan.Layout)
}

func TestSelectRejectsC01Cuda(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC01Cuda).
		WithDataLayouts(functor.LayoutCuda).
		WithNewton3(false).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.Error(t, err)
}

func TestSelectRejectsUnrecognizedTraversalTag(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TraversalTag(999)).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	kind, ok := aperrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aperrors.KindUnknownOption, kind)
}

func TestSelectRejectsOwnerMismatch(t *testing.T) {
	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerDirectSum).
		WithTraversals(selector.TagC08). // c08 only ever applies to linked cells
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true).
		WithCellSizeFactors(1.0)

	_, err := selector.Select(cfg, caps{n3: true, nonN3: true})
	require.Error(t, err)
}
