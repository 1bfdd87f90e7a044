package ecs

import (
	"github.com/phanxgames/popstage"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// NoticeEventType carries every notice the stage raises.
var NoticeEventType = events.NewEventType[popstage.Notice]()

// SnapshotEventType carries every state snapshot published by the store.
var SnapshotEventType = events.NewEventType[*popstage.Snapshot]()

// StageState is the component holding the latest snapshot.
type StageState struct {
	Snapshot *popstage.Snapshot
}

// StageStateComponent is attached to the observer's singleton entity.
var StageStateComponent = donburi.NewComponentType[StageState]()

type donburiNotifier struct {
	world donburi.World
}

// NewDonburiNotifier returns a Notifier publishing to NoticeEventType.
func NewDonburiNotifier(world donburi.World) popstage.Notifier {
	return &donburiNotifier{world: world}
}

func (n *donburiNotifier) Notify(notice popstage.Notice) {
	NoticeEventType.Publish(n.world, notice)
}

// Observer mirrors a store into a Donburi world.
type Observer struct {
	world  donburi.World
	entity donburi.Entity
	handle popstage.CallbackHandle
}

// NewDonburiObserver creates the state entity from the store's current
// snapshot and keeps it current. Each later snapshot is also published to
// SnapshotEventType.
func NewDonburiObserver(world donburi.World, store *popstage.Store) *Observer {
	o := &Observer{world: world, entity: world.Create(StageStateComponent)}
	o.set(store.Current())
	o.handle = store.Subscribe(func(s *popstage.Snapshot) {
		o.set(s)
		SnapshotEventType.Publish(world, s)
	})
	return o
}

func (o *Observer) set(s *popstage.Snapshot) {
	if !o.world.Valid(o.entity) {
		return
	}
	StageStateComponent.SetValue(o.world.Entry(o.entity), StageState{Snapshot: s})
}

// Entity returns the entity holding StageStateComponent.
func (o *Observer) Entity() donburi.Entity {
	return o.entity
}

// Snapshot returns the snapshot stored on the state entity, or nil after
// the entity was removed.
func (o *Observer) Snapshot() *popstage.Snapshot {
	if !o.world.Valid(o.entity) {
		return nil
	}
	return StageStateComponent.Get(o.world.Entry(o.entity)).Snapshot
}

// Close stops observing and removes the state entity.
func (o *Observer) Close() {
	o.handle.Remove()
	if o.world.Valid(o.entity) {
		o.world.Remove(o.entity)
	}
}
