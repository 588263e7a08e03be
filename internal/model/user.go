package model

import "time"

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  Defaults (`is_active` true, `is_verified`
// false, NULL `updated_at`) are resolved by the schema at insert time, so a
// freshly scanned row always carries explicit values.
//
// Fields:
//  ID             – primary key identifier, assigned at creation and immutable.
//  Email          – unique email address, lower-cased before storage, immutable.
//  FullName       – display name supplied at registration.
//  HashedPassword – bcrypt hash; the plaintext is never stored.
//  IsActive       – whether the account may log in.
//  IsVerified     – whether the email address has been confirmed.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update, nil until the record is first patched.
type User struct {
	ID             uint64     // users.id
	Email          string     // users.email
	FullName       string     // users.full_name
	HashedPassword string     // users.hashed_password
	IsActive       bool       // users.is_active
	IsVerified     bool       // users.is_verified
	CreatedAt      time.Time  // users.created_at
	UpdatedAt      *time.Time // users.updated_at (nullable)
}
