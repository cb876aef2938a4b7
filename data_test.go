package aclkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const editorialJSON = `{
  "roles": [
    {"name": "guest"},
    {"name": "user", "parents": ["guest"]},
    {"name": "admin", "parents": ["user"]}
  ],
  "resources": [
    {"name": "index"},
    {"name": "blog", "parents": ["index"]}
  ],
  "allow": [
    {"roles": ["guest"], "resources": ["index"], "privileges": ["read"]},
    {"roles": ["user"], "resources": ["blog"], "privileges": ["read", "comment"]},
    {"roles": ["admin"]}
  ],
  "deny": [
    {"roles": ["user"], "resources": ["blog"], "privileges": ["publish"]}
  ]
}`

const editorialYAML = `roles:
  - name: guest
  - name: user
    parents: [guest]
  - name: admin
    parents: [user]
resources:
  - name: index
  - name: blog
    parents: [index]
allow:
  - roles: [guest]
    resources: [index]
    privileges: [read]
  - roles: [user]
    resources: [blog]
    privileges: [read, comment]
  - roles: [admin]
deny:
  - roles: [user]
    resources: [blog]
    privileges: [publish]
`

// TestDataFromJSON tests JSON document parsing
func TestDataFromJSON(t *testing.T) {
	t.Run("Valid document", func(t *testing.T) {
		d, err := DataFromJSON([]byte(editorialJSON))
		require.NoError(t, err)

		assert.Len(t, d.Roles, 3)
		assert.Len(t, d.Resources, 2)
		assert.Len(t, d.Allow, 3)
		assert.Len(t, d.Deny, 1)
		assert.Equal(t, "user", d.Roles[1].Name)
		assert.Equal(t, []string{"guest"}, d.Roles[1].Parents)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		d, err := DataFromJSON([]byte(`{"roles": [`))
		assert.Nil(t, d)
		require.Error(t, err)
		assert.True(t, IsInvalidData(err))
	})
}

// TestDataFromYAML tests YAML document parsing
func TestDataFromYAML(t *testing.T) {
	t.Run("Valid document", func(t *testing.T) {
		d, err := DataFromYAML([]byte(editorialYAML))
		require.NoError(t, err)

		assert.Len(t, d.Roles, 3)
		assert.Len(t, d.Resources, 2)
		assert.Len(t, d.Allow, 3)
		assert.Len(t, d.Deny, 1)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		d, err := DataFromYAML([]byte("roles: [\n  broken"))
		assert.Nil(t, d)
		require.Error(t, err)
		assert.True(t, IsInvalidData(err))
	})
}

// TestAclData_Validate tests document shape validation
func TestAclData_Validate(t *testing.T) {
	t.Run("Valid document", func(t *testing.T) {
		d := &AclData{
			Roles:     []SymbolData{{Name: "guest"}, {Name: "user", Parents: []string{"guest"}}},
			Resources: []SymbolData{{Name: "index"}},
		}
		assert.NoError(t, d.Validate())
	})

	t.Run("Empty document", func(t *testing.T) {
		assert.NoError(t, (&AclData{}).Validate())
	})

	t.Run("Empty role name", func(t *testing.T) {
		d := &AclData{Roles: []SymbolData{{Name: ""}}}
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, IsInvalidData(err))

		var aclErr *Error
		require.True(t, errors.As(err, &aclErr))
		assert.Equal(t, "role", aclErr.Graph)
	})

	t.Run("Wildcard is not a declarable name", func(t *testing.T) {
		d := &AclData{Resources: []SymbolData{{Name: "*"}}}
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, IsInvalidData(err))

		var aclErr *Error
		require.True(t, errors.As(err, &aclErr))
		assert.Equal(t, "resource", aclErr.Graph)
		assert.Equal(t, "*", aclErr.Symbol)
	})

	t.Run("Invalid parent", func(t *testing.T) {
		for _, parent := range []string{"", "*"} {
			d := &AclData{Roles: []SymbolData{{Name: "user", Parents: []string{parent}}}}
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, IsInvalidData(err))

			var aclErr *Error
			require.True(t, errors.As(err, &aclErr))
			assert.Equal(t, "user", aclErr.Symbol)
		}
	})
}

// TestBuilderFromData tests document replay into a builder
func TestBuilderFromData(t *testing.T) {
	t.Run("Nil document", func(t *testing.T) {
		b, err := BuilderFromData(nil)
		assert.Nil(t, b)
		require.Error(t, err)
		assert.True(t, IsInvalidData(err))
	})

	t.Run("Invalid document is rejected before replay", func(t *testing.T) {
		d := &AclData{Roles: []SymbolData{{Name: "*"}}}
		b, err := BuilderFromData(d)
		assert.Nil(t, b)
		assert.True(t, IsInvalidData(err))
	})

	t.Run("Builder stays mutable after replay", func(t *testing.T) {
		d, err := DataFromJSON([]byte(editorialJSON))
		require.NoError(t, err)

		b, err := BuilderFromData(d)
		require.NoError(t, err)

		acl, err := b.
			AddRole("auditor", "guest").
			Allow([]string{"auditor"}, []string{"blog"}, []string{"audit"}).
			Build()
		require.NoError(t, err)

		assert.True(t, acl.IsAllowed("auditor", "blog", "audit"))
		assert.True(t, acl.IsAllowed("auditor", "index", "read"))
	})

	t.Run("Cycles surface at Build, not replay", func(t *testing.T) {
		d := &AclData{Roles: []SymbolData{
			{Name: "a", Parents: []string{"b"}},
			{Name: "b", Parents: []string{"a"}},
		}}

		b, err := BuilderFromData(d)
		require.NoError(t, err)

		acl, err := b.Build()
		assert.Nil(t, acl)
		assert.True(t, IsCycleDetected(err))
	})
}

// TestAclFromJSON tests the one-step JSON path end to end
func TestAclFromJSON(t *testing.T) {
	acl, err := AclFromJSON([]byte(editorialJSON))
	require.NoError(t, err)

	assert.True(t, acl.IsAllowed("guest", "index", "read"))
	assert.True(t, acl.IsAllowed("user", "blog", "comment"))
	assert.False(t, acl.IsAllowed("user", "blog", "publish"))
	assert.True(t, acl.IsAllowed("admin", "index", "write"))
	assert.False(t, acl.IsAllowed("guest", "index", "write"))

	t.Run("Parse failure propagates", func(t *testing.T) {
		acl, err := AclFromJSON([]byte("not json"))
		assert.Nil(t, acl)
		assert.True(t, IsInvalidData(err))
	})
}

// TestAclFromYAML tests the one-step YAML path end to end
func TestAclFromYAML(t *testing.T) {
	acl, err := AclFromYAML([]byte(editorialYAML))
	require.NoError(t, err)

	assert.True(t, acl.IsAllowed("guest", "index", "read"))
	assert.True(t, acl.IsAllowed("user", "blog", "comment"))
	assert.False(t, acl.IsAllowed("user", "blog", "publish"))
	assert.True(t, acl.IsAllowed("admin", "blog", "read"))

	t.Run("Parse failure propagates", func(t *testing.T) {
		acl, err := AclFromYAML([]byte("allow: [\n  broken"))
		assert.Nil(t, acl)
		assert.True(t, IsInvalidData(err))
	})
}

// TestAclData_WildcardNormalization tests the "*" spelling of "all"
func TestAclData_WildcardNormalization(t *testing.T) {
	t.Run("Wildcard axis means all", func(t *testing.T) {
		acl, err := AclFromData(&AclData{
			Roles:     []SymbolData{{Name: "guest"}},
			Resources: []SymbolData{{Name: "blog"}},
			Allow:     []RuleData{{Roles: []string{"*"}, Resources: []string{"*"}}},
			Deny:      []RuleData{{Roles: []string{"guest"}, Resources: []string{"blog"}, Privileges: []string{"read"}}},
		})
		require.NoError(t, err)

		assert.False(t, acl.IsAllowed("guest", "blog", "read"))
		assert.True(t, acl.IsAllowed("guest", "blog", "write"))
		assert.True(t, acl.IsAllowed("stranger", "elsewhere", "read"))
	})

	t.Run("Wildcard among names collapses the whole axis", func(t *testing.T) {
		acl, err := AclFromData(&AclData{
			Roles:     []SymbolData{{Name: "guest"}},
			Resources: []SymbolData{{Name: "blog"}},
			Allow:     []RuleData{{Roles: []string{"guest", "*"}, Resources: []string{"blog"}}},
		})
		require.NoError(t, err)

		// The entry landed in the for-all-roles slot, not under guest.
		assert.True(t, acl.IsAllowed("stranger", "blog", "read"))
	})

	t.Run("Wildcard privileges", func(t *testing.T) {
		acl, err := AclFromData(&AclData{
			Roles:     []SymbolData{{Name: "guest"}},
			Resources: []SymbolData{{Name: "blog"}},
			Allow:     []RuleData{{Roles: []string{"guest"}, Resources: []string{"blog"}, Privileges: []string{"*"}}},
		})
		require.NoError(t, err)

		assert.True(t, acl.IsAllowed("guest", "blog", "anything"))
	})
}

// TestAclData_ReplayOrder tests that deny entries replay after allow
// entries, so a deny at the same coordinate wins
func TestAclData_ReplayOrder(t *testing.T) {
	acl, err := AclFromData(&AclData{
		Roles:     []SymbolData{{Name: "guest"}},
		Resources: []SymbolData{{Name: "blog"}},
		Allow:     []RuleData{{Roles: []string{"guest"}, Resources: []string{"blog"}, Privileges: []string{"read"}}},
		Deny:      []RuleData{{Roles: []string{"guest"}, Resources: []string{"blog"}, Privileges: []string{"read"}}},
	})
	require.NoError(t, err)

	assert.False(t, acl.IsAllowed("guest", "blog", "read"))
}

// TestAclData_Rendering tests JSON and YAML output stays parseable
func TestAclData_Rendering(t *testing.T) {
	d, err := DataFromJSON([]byte(editorialJSON))
	require.NoError(t, err)

	t.Run("JSON", func(t *testing.T) {
		out, err := d.JSON()
		require.NoError(t, err)

		back, err := DataFromJSON(out)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := d.YAML()
		require.NoError(t, err)

		back, err := DataFromYAML(out)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	})
}

// TestAcl_Data tests exporting an Acl back into a document
func TestAcl_Data(t *testing.T) {
	acl := newEditorialAcl(t)
	d := acl.Data()

	t.Run("Symbols in registration order", func(t *testing.T) {
		require.Len(t, d.Roles, 3)
		assert.Equal(t, "guest", d.Roles[0].Name)
		assert.Equal(t, "user", d.Roles[1].Name)
		assert.Equal(t, []string{"guest"}, d.Roles[1].Parents)
		assert.Equal(t, "admin", d.Roles[2].Name)

		require.Len(t, d.Resources, 2)
		assert.Equal(t, "index", d.Resources[0].Name)
		assert.Equal(t, "blog", d.Resources[1].Name)
		assert.Equal(t, []string{"index"}, d.Resources[1].Parents)
	})

	t.Run("Replaying the export preserves every answer", func(t *testing.T) {
		rebuilt, err := AclFromData(d)
		require.NoError(t, err)

		queries := []struct {
			role, resource, privilege string
		}{
			{"guest", "index", "read"},
			{"guest", "index", "write"},
			{"guest", "blog", "read"},
			{"user", "blog", "read"},
			{"user", "blog", "comment"},
			{"user", "blog", "publish"},
			{"admin", "blog", "publish"},
			{"admin", "index", "write"},
			{"admin", "other", "anything"},
			{"stranger", "index", "read"},
			{"", "", ""},
		}
		for _, q := range queries {
			assert.Equal(t,
				acl.IsAllowed(q.role, q.resource, q.privilege),
				rebuilt.IsAllowed(q.role, q.resource, q.privilege),
				"query (%s, %s, %s)", q.role, q.resource, q.privilege)
		}
	})

	t.Run("Export is parseable in both encodings", func(t *testing.T) {
		jsonOut, err := d.JSON()
		require.NoError(t, err)
		fromJSON, err := AclFromJSON(jsonOut)
		require.NoError(t, err)
		assert.True(t, fromJSON.IsAllowed("user", "blog", "comment"))

		yamlOut, err := d.YAML()
		require.NoError(t, err)
		fromYAML, err := AclFromYAML(yamlOut)
		require.NoError(t, err)
		assert.False(t, fromYAML.IsAllowed("user", "blog", "publish"))
	})
}
