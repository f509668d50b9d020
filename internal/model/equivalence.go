package model

import "slices"

// Equivalence classifies how two secondary objects relate during a merge.
type Equivalence int

const (
	// Different objects are both kept.
	Different Equivalence = iota
	// Equal objects describe the same thing; the addendum is merged into the original.
	Equal
	// Identical objects carry the same data; the addendum is dropped.
	Identical
)

func classify(sameCore, sameDetail bool) Equivalence {
	if !sameCore {
		return Different
	}
	if sameDetail {
		return Identical
	}
	return Equal
}

type secondary[T any] interface {
	*T
	IsEquivalent(other *T) Equivalence
	Merge(acquisition *T)
	annotations() *Annotations
}

type refSecondary[T any] interface {
	secondary[T]
	RefHandle() string
	SetRefHandle(handle string)
}

// mergeList folds addenda into list. Addenda are only compared against the
// entries list held before the merge started.
func mergeList[T any, P secondary[T]](list []T, addenda []T) []T {
	existing := len(list)
	for i := range addenda {
		addendum := P(&addenda[i])
		matched := false
		for j := 0; j < existing && !matched; j++ {
			switch P(&list[j]).IsEquivalent(addendum) {
			case Identical:
				matched = true
			case Equal:
				P(&list[j]).Merge(addendum)
				matched = true
			}
		}
		if !matched {
			list = append(list, addenda[i])
		}
	}
	return list
}

// replaceRefs repoints every entry referencing oldHandle to newHandle. When an
// entry for newHandle already existed, repointed entries equivalent to it are folded.
func replaceRefs[T any, P refSecondary[T]](list []T, oldHandle, newHandle string) []T {
	if oldHandle == newHandle || !hasRef[T, P](list, oldHandle) {
		return list
	}
	newIdx := slices.IndexFunc(list, func(item T) bool { return P(&item).RefHandle() == newHandle })

	out := make([]T, 0, len(list))
	newOut := -1
	for i := range list {
		item := P(&list[i])
		if i == newIdx {
			newOut = len(out)
		}
		if item.RefHandle() != oldHandle {
			out = append(out, list[i])
			continue
		}
		item.SetRefHandle(newHandle)
		if newIdx >= 0 {
			target := P(&list[newIdx])
			if newOut >= 0 {
				target = P(&out[newOut])
			}
			switch target.IsEquivalent(item) {
			case Identical:
				continue
			case Equal:
				target.Merge(item)
				continue
			}
		}
		out = append(out, list[i])
	}
	return out
}

func removeRefs[T any, P refSecondary[T]](list []T, handles []string) []T {
	if len(list) == 0 {
		return list
	}
	out := list[:0:0]
	for i := range list {
		if !slices.Contains(handles, P(&list[i]).RefHandle()) {
			out = append(out, list[i])
		}
	}
	return out
}

func hasRef[T any, P refSecondary[T]](list []T, handle string) bool {
	for i := range list {
		if P(&list[i]).RefHandle() == handle {
			return true
		}
	}
	return false
}

func refHandles[T any, P refSecondary[T]](list []T) []string {
	handles := make([]string, 0, len(list))
	for i := range list {
		handles = append(handles, P(&list[i]).RefHandle())
	}
	return handles
}

func annotationsOf[T any, P secondary[T]](list []T) []*Annotations {
	out := make([]*Annotations, 0, len(list))
	for i := range list {
		out = append(out, P(&list[i]).annotations())
	}
	return out
}
