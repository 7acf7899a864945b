// Package models defines domain entities and persistence interfaces for the bandfeed discovery service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between the store and the resolver
//   - [Band] : A band row as the name resolver sees it
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedBand] : A stored band with sequence number, timestamps and soft delete
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
