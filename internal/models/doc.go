// Package models defines the domain entities shared by the cineflix packages.
//
// The package contains two categories of types:
//
// 1. Value types exchanged between components and serialized into the profile store:
//   - [User] : the authenticated viewer as held by the session
//   - [Subscription] : a viewer's plan membership
//   - [Plan] : a purchasable subscription tier
//   - [Movie] : a catalog item handed to the favorites and continue-watching managers
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Account] : local viewer account with password hash and soft delete
//
// Persistent entities implement the [Model] interface providing IDs, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
