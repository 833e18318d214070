package clientprogram

import (
	"cmp"
	"slices"

	"fitcoach/internal/exercise"
	"fitcoach/internal/program"
)

// Resolve merges template items, client customizations and exercise defaults into the
// effective ordered list plus the template items the client has removed.
func Resolve(templ []program.Item, custom []Item, exercises map[int]*exercise.Exercise) (items, removed []EffectiveItem) {
	byExercise := make(map[int]*Item, len(custom))
	for i := range custom {
		byExercise[custom[i].ExerciseID] = &custom[i]
	}

	items = []EffectiveItem{}
	removed = []EffectiveItem{}
	inTemplate := make(map[int]bool, len(templ))
	fromTemplate := make(map[int]bool, len(templ)+len(custom))
	nextOrder := 0

	for _, pi := range templ {
		if inTemplate[pi.ExerciseID] {
			continue
		}
		inTemplate[pi.ExerciseID] = true
		if pi.Position >= nextOrder {
			nextOrder = pi.Position + 1
		}

		c := byExercise[pi.ExerciseID]
		itemID := pi.ID
		eff := EffectiveItem{
			ExerciseID:    pi.ExerciseID,
			ProgramItemID: &itemID,
			Section:       pi.Section,
			Order:         pi.Position,
			Exercise:      exercises[pi.ExerciseID],
		}

		if c != nil && c.IsRemoved {
			eff.Overrides = merge(program.Overrides{}, pi.Overrides, eff.Exercise)
			removed = append(removed, eff)
			continue
		}

		var client program.Overrides
		if c != nil {
			client = c.Overrides
			if c.SortOrder != nil {
				eff.Order = *c.SortOrder
			}
			if c.Section != nil {
				eff.Section = *c.Section
			}
			eff.IsCustomized = !c.IsEmpty()
		}
		eff.Overrides = merge(client, pi.Overrides, eff.Exercise)
		fromTemplate[pi.ExerciseID] = true
		items = append(items, eff)
	}

	added := make([]*Item, 0)
	for i := range custom {
		c := &custom[i]
		if c.IsRemoved {
			continue
		}
		if c.SortOrder != nil && *c.SortOrder >= nextOrder {
			nextOrder = *c.SortOrder + 1
		}
		if c.IsAdded && !inTemplate[c.ExerciseID] {
			added = append(added, c)
		}
	}
	slices.SortFunc(added, func(a, b *Item) int { return cmp.Compare(a.ID, b.ID) })

	for _, c := range added {
		eff := EffectiveItem{
			ExerciseID:   c.ExerciseID,
			Section:      program.SectionCore,
			IsAdded:      true,
			IsCustomized: true,
			Exercise:     exercises[c.ExerciseID],
		}
		if c.SortOrder != nil {
			eff.Order = *c.SortOrder
		} else {
			eff.Order = nextOrder
			nextOrder++
		}
		if c.Section != nil {
			eff.Section = *c.Section
		}
		eff.Overrides = merge(c.Overrides, program.Overrides{}, eff.Exercise)
		items = append(items, eff)
	}

	slices.SortStableFunc(items, func(a, b EffectiveItem) int {
		if n := cmp.Compare(a.Order, b.Order); n != 0 {
			return n
		}
		if n := cmp.Compare(program.SectionRank(a.Section), program.SectionRank(b.Section)); n != 0 {
			return n
		}
		if fromTemplate[a.ExerciseID] != fromTemplate[b.ExerciseID] {
			if fromTemplate[a.ExerciseID] {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ExerciseID, b.ExerciseID)
	})
	return items, removed
}

// merge takes, per field, the first non-nil of the client override, the template override
// and the exercise default.
func merge(client, templ program.Overrides, e *exercise.Exercise) program.Overrides {
	var def program.Overrides
	if e != nil {
		sets, rest := e.DefaultSets, e.RestSeconds
		def = program.Overrides{
			Sets:            &sets,
			Reps:            e.DefaultReps,
			HoldSeconds:     e.HoldSeconds,
			DurationMinutes: e.DurationMinutes,
			RestSeconds:     &rest,
		}
	}

	return program.Overrides{
		Sets:            first(client.Sets, templ.Sets, def.Sets),
		Reps:            first(client.Reps, templ.Reps, def.Reps),
		HoldSeconds:     first(client.HoldSeconds, templ.HoldSeconds, def.HoldSeconds),
		DurationMinutes: first(client.DurationMinutes, templ.DurationMinutes, def.DurationMinutes),
		RestSeconds:     first(client.RestSeconds, templ.RestSeconds, def.RestSeconds),
		WeightsPerSet:   firstSlice(client.WeightsPerSet, templ.WeightsPerSet),
		Intensity:       first(client.Intensity, templ.Intensity),
		Notes:           first(client.Notes, templ.Notes),
	}
}

func first[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstSlice[S ~[]E, E any](vals ...S) S {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
