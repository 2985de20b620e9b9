// Package main Orgauth API
//
//	@title						Orgauth API
//	@version					1.0
//	@description				Multi-tenant organization membership, role-based authorization and invitations.
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Account
//	@tag.description			Caller identity
//
//	@tag.name					Organizations
//	@tag.description			Organizations and memberships
//
//	@tag.name					Resources
//	@tag.description			Teams and apps
//
//	@tag.name					Invitations
//	@tag.description			Invitation lifecycle
package main
