package community

// Thread nests replies under their top-level comment, keeping input order within each level.
// Replies whose parent is missing are appended at the top level.
func Thread(flat []Comment) []Comment {
	index := make(map[int]int, len(flat))
	top := make([]Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == nil {
			index[c.ID] = len(top)
			top = append(top, c)
		}
	}
	for _, c := range flat {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, c)
			continue
		}
		top = append(top, c)
	}
	return top
}

// rootOf returns the id a reply to parent should attach to, keeping nesting one level deep.
func rootOf(parent *Comment) int {
	if parent.ParentID != nil {
		return *parent.ParentID
	}
	return parent.ID
}
