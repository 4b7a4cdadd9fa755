// Package ecs provides ECS adapters for argallery's gallery event system.
//
// The primary adapter is [NewDonburiStore], which bridges gallery events
// (grid added/removed, painting placed/removed/scaled, missed taps) into a
// [Donburi] world as typed events, and mirrors every live painting as an
// entity carrying a [PaintingData] component.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	gallery.Scene().SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
