package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// The chunked strategy bounds worst-case cost roughly linearly in document
// size: both texts are grouped into paragraph-bounded chunks, the chunk
// sequences are aligned as atomic units, and only replaced chunk pairs are
// diffed in full.

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
	opReplace
)

type chunkOp struct {
	kind      opKind
	oldChunks []string
	newChunks []string
}

func (e *Engine) chunkedDiff(oldClean, newClean string) Result {
	oldChunks := splitChunks(oldClean, e.cfg.ChunkSize)
	newChunks := splitChunks(newClean, e.cfg.ChunkSize)

	var added, removed, unchanged []string
	for _, op := range e.alignChunks(oldChunks, newChunks) {
		switch op.kind {
		case opEqual:
			unchanged = append(unchanged, op.oldChunks...)
		case opDelete:
			removed = append(removed, op.oldChunks...)
		case opInsert:
			added = append(added, op.newChunks...)
		case opReplace:
			// Paired chunks get a full paragraph-level diff; leftovers on
			// the longer side have no counterpart and are wholesale.
			n := len(op.oldChunks)
			if len(op.newChunks) < n {
				n = len(op.newChunks)
			}
			for i := 0; i < n; i++ {
				sub := e.lineDiff(op.oldChunks[i], op.newChunks[i])
				if !sub.HasChanges {
					unchanged = append(unchanged, sub.Unchanged)
					continue
				}
				if sub.Removed != "" {
					removed = append(removed, sub.Removed)
				}
				if sub.Added != "" {
					added = append(added, sub.Added)
				}
				if sub.Unchanged != "" {
					unchanged = append(unchanged, sub.Unchanged)
				}
			}
			removed = append(removed, op.oldChunks[n:]...)
			added = append(added, op.newChunks[n:]...)
		}
	}

	return Result{
		Added:      strings.Join(added, "\n\n"),
		Removed:    strings.Join(removed, "\n\n"),
		Unchanged:  strings.Join(unchanged, "\n\n"),
		HasChanges: len(added) > 0 || len(removed) > 0,
	}
}

// splitChunks groups paragraphs into chunks of roughly target bytes without
// ever splitting a paragraph.
func splitChunks(text string, target int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current []string
	size := 0
	for _, para := range paragraphs {
		if size+len(para) > target && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = current[:0:0]
			size = 0
		}
		current = append(current, para)
		size += len(para)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}

// alignChunks reuses the line-level algorithm with whole chunks as atomic
// units: each distinct chunk is encoded as one rune, the rune strings are
// diffed, and a delete immediately followed by an insert reads as a replace.
func (e *Engine) alignChunks(oldChunks, newChunks []string) []chunkOp {
	ids := make(map[string]rune)
	encode := func(chunks []string) string {
		var sb strings.Builder
		for _, c := range chunks {
			r, ok := ids[c]
			if !ok {
				r = rune(len(ids) + 1)
				if r >= 0xD800 { // skip the surrogate range
					r += 0x800
				}
				ids[c] = r
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	encodedOld := encode(oldChunks)
	encodedNew := encode(newChunks)

	diffs := e.dmp.DiffMain(encodedOld, encodedNew, false)

	var ops []chunkOp
	oldPos, newPos := 0, 0
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, chunkOp{
				kind:      opEqual,
				oldChunks: oldChunks[oldPos : oldPos+n],
				newChunks: newChunks[newPos : newPos+n],
			})
			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				m := utf8.RuneCountInString(diffs[i+1].Text)
				ops = append(ops, chunkOp{
					kind:      opReplace,
					oldChunks: oldChunks[oldPos : oldPos+n],
					newChunks: newChunks[newPos : newPos+m],
				})
				oldPos += n
				newPos += m
				i++
				continue
			}
			ops = append(ops, chunkOp{kind: opDelete, oldChunks: oldChunks[oldPos : oldPos+n]})
			oldPos += n
		case diffmatchpatch.DiffInsert:
			ops = append(ops, chunkOp{kind: opInsert, newChunks: newChunks[newPos : newPos+n]})
			newPos += n
		}
	}
	return ops
}
