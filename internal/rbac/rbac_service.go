package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (r.sub == p.sub || p.sub == "*") && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*")
`

// defaultPolicies maps roles to the operator surface. Admin is a wildcard;
// the rest follow the approval chain: operators run ingestion and
// generation, managers and HR review and approve.
var defaultPolicies = [][]string{
	{"admin", "*", "*"},
	{"operator", "ingest", "run"},
	{"operator", "ingest", "read"},
	{"operator", "payroll", "generate"},
	{"operator", "payroll", "read"},
	{"manager", "payroll", "read"},
	{"manager", "payroll", "review"},
	{"manager", "payroll", "approve"},
	{"hr", "payroll", "read"},
	{"hr", "payroll", "review"},
	{"hr", "payroll", "approve"},
	{"hr", "ingest", "read"},
	{"hr", "exception", "decide"},
	{"hr", "exclusion", "create"},
	{"manager", "exception", "decide"},
	{"employee", "exception", "create"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforcer.Enforce(role, resource, action)
}
