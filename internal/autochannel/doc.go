// Package autochannel implements eclipse's auto-channel orchestration.
//
// A guild configures one voice channel as its root. Whenever a member joins
// the root, eclipse creates a copy of it (an auto-channel), makes the member
// its owner and moves them in. Auto-channels are named after the most common
// activities of their members:
//
//	#1 [Team Fortress 2, No Man's Sky, Spotify]
//	#2 [General]
//
// and are deleted as soon as the last member leaves.
//
// # Components
//
//   - Registry: the in-memory set of auto-channels per guild, in creation
//     order, with owners and manually-renamed flags. The position of a channel
//     in its guild's list is the number in its name.
//   - Synthesize: the pure naming function.
//   - Orchestrator: consumes platform events and issues mutations.
//   - Executor and Future: run platform calls off the event goroutine and
//     deliver results to continuations.
//
// # Consistency
//
// The registry only advances once the platform confirmed a mutation. The
// exception is ownership: when granting the owner override to a successor
// fails, the channel becomes ownerless rather than keeping a stale owner.
//
// Presence changes can arrive far more often than the platform allows
// channel renames, so presence-triggered renames are limited to one per
// channel per RenamePolicy.Window. A rename denied by the window is not
// dropped: one trailing RenameDue event is scheduled for when the window
// reopens.
//
// A user rename that does not match the synthesized label marks the channel
// as manually renamed. From then on eclipse never renames it again.
//
// Bookkeeping is process-local. After a restart existing auto-channels are
// no longer tracked.
package autochannel
