// Package ecs bridges popstage into a [Donburi] world.
//
// Notices and state snapshots are published as typed Donburi events, and
// the latest snapshot is mirrored onto a singleton entity so ECS systems
// can query the stage without holding a reference to it:
//
//	world := donburi.NewWorld()
//	stage, _ := popstage.NewStage(cfg, popstage.WithNotifier(ecs.NewDonburiNotifier(world)))
//	obs := ecs.NewDonburiObserver(world, stage.Store())
//	defer obs.Close()
//
// Queued events are delivered by [events.ProcessAllEvents].
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
