/*
Package lessonflow is the editing core of a visual lesson-flow authoring tool.

A flow is a directed graph of typed nodes (start, setup, lecture, condition,
end), each holding an ordered list of typed blocks. The Editor owns that
document, records human-meaningful undo entries while coalescing noisy change
streams, and derives the option sets that asset-dependent blocks may offer.

# Concept

The rendering layer (a canvas library) and the block components are external
collaborators. The canvas sends raw change batches and receives full
replacements after undo and redo; block components call the block API and
read filtered options. Persistence and transport live in adapters.

# Key Features

  - Bounded linear history: one entry per user gesture, with debounced field edits.
  - Flush before navigate: a pending edit is never lost or replayed by undo.
  - Restore guard: changes echoed by the renderer during a restore are not recorded.
  - Asset context: options derive from the Setup node and stale selections are pruned.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/lessonflow"
		"github.com/aretw0/lessonflow/pkg/domain"
	)

	func main() {
		ed := lessonflow.New()

		setup, _ := ed.CreateNode(domain.NodeTypeSetup, domain.Position{}, nil)
		_, _ = ed.AddBlock(setup.ID, domain.BlockSpec{
			Type: domain.BlockAssetLMS,
			Data: map[string]any{"lmsType": "practice", "questionType": "true_false"},
		})

		fmt.Println(ed.CollectUserDataMethods()) // [choose-answer]

		ed.Undo()
		fmt.Println(len(ed.GetNodeBlocks(setup.ID))) // 0
	}
*/
package lessonflow
