package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"user": {
		"quiz:list-visible",
		"quiz:take",
		"quiz:submit",
		"history:view-own",
	},
	"examiner": {
		"quiz:create",
		"quiz:view-own",
		"results:view-own",
		"results:export",
	},
	"admin": {
		"*", // everything
	},
}
