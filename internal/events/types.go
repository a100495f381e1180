package events

// Reason identifies an audit-log reason attached to a platform mutation.
type Reason string

const (
	// ReasonCloneCreated is attached to the creation of an auto-channel.
	ReasonCloneCreated Reason = "CloneCreated"

	// ReasonCloneEmpty is attached to the deletion of an emptied auto-channel.
	ReasonCloneEmpty Reason = "CloneEmpty"

	// ReasonRootDeleted is attached to deletions cascading from a deleted root channel.
	ReasonRootDeleted Reason = "RootDeleted"

	// ReasonOwnerLeft is attached to both halves of an ownership transfer.
	ReasonOwnerLeft Reason = "OwnerLeft"

	// ReasonRenamed is attached to automatic renames.
	ReasonRenamed Reason = "Renamed"

	// ReasonPropertySynced is attached to limit, bitrate and parent propagation.
	ReasonPropertySynced Reason = "PropertySynced"

	// ReasonPermissionsSynced is attached to permission re-synchronization.
	ReasonPermissionsSynced Reason = "PermissionsSynced"
)

// Reasons lists every known reason in a stable order.
var Reasons = []Reason{
	ReasonCloneCreated,
	ReasonCloneEmpty,
	ReasonRootDeleted,
	ReasonOwnerLeft,
	ReasonRenamed,
	ReasonPropertySynced,
	ReasonPermissionsSynced,
}

// ReasonData carries the values a reason template may reference.
type ReasonData struct {
	// Actor is the member whose action caused the mutation.
	Actor string

	// NewOwner is the member designated as the new owner.
	NewOwner string

	// Property names the synchronized channel property.
	Property string

	// Channel is the id of the mutated channel.
	Channel string

	// Label is the requested channel name.
	Label string
}
