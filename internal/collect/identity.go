package collect

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"logonlog/internal/directory"
	"logonlog/internal/winutil"
)

// IdentityCollector resolves the logged-on user and the computer against
// Active Directory.
type IdentityCollector struct {
	Shell winutil.Runner
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// NewIdentityCollector returns a collector using shell for directory lookups.
func NewIdentityCollector(shell winutil.Runner) *IdentityCollector {
	return &IdentityCollector{Shell: shell, Getenv: os.Getenv}
}

// Name returns the collector's identifier.
func (c *IdentityCollector) Name() string {
	return "identity"
}

// Collect looks up both distinguished names and stores the identity facts.
func (c *IdentityCollector) Collect(ctx context.Context, facts *Facts) error {
	id, err := c.Identity(ctx)
	if err != nil {
		return err
	}
	facts.SetIdentity(id)
	return nil
}

// Identity resolves the identity facts without storing them.
func (c *IdentityCollector) Identity(ctx context.Context) (Identity, error) {
	computerName, err := c.computerName()
	if err != nil {
		return Identity{}, err
	}
	logonName, err := c.logonName()
	if err != nil {
		return Identity{}, err
	}

	type lookup struct {
		dn  directory.DN
		err error
	}
	userCh := make(chan lookup, 1)
	compCh := make(chan lookup, 1)
	go func() {
		dn, err := c.lookupDN(ctx, "Get-ADUser", logonName)
		userCh <- lookup{dn, err}
	}()
	go func() {
		dn, err := c.lookupDN(ctx, "Get-ADComputer", computerName)
		compCh <- lookup{dn, err}
	}()
	userRes, compRes := <-userCh, <-compCh
	if userRes.err != nil {
		return Identity{}, fmt.Errorf("failed to resolve user %s: %w", logonName, userRes.err)
	}
	if compRes.err != nil {
		return Identity{}, fmt.Errorf("failed to resolve computer %s: %w", computerName, compRes.err)
	}

	return identityFromDNs(computerName, userRes.dn, compRes.dn)
}

func identityFromDNs(computerName string, userDN, compDN directory.DN) (Identity, error) {
	username, ok := userDN.CommonName()
	if !ok {
		return Identity{}, fmt.Errorf("user %s has no common name", userDN)
	}
	userOU, err := directory.UserOU(userDN)
	if err != nil {
		return Identity{}, fmt.Errorf("user %s: %w", userDN, err)
	}
	parent, err := compDN.ParentOU()
	if err != nil {
		return Identity{}, fmt.Errorf("computer %s: %w", compDN, err)
	}
	wsOU, err := directory.WorkstationOU(compDN)
	if err != nil {
		return Identity{}, fmt.Errorf("computer %s: %w", compDN, err)
	}

	return Identity{
		ComputerName:  computerName,
		Username:      username,
		UserOU:        userOU,
		FullOU:        parent.String(),
		WorkstationOU: wsOU,
	}, nil
}

func (c *IdentityCollector) lookupDN(ctx context.Context, cmdlet, identity string) (directory.DN, error) {
	script := fmt.Sprintf("(%s -Identity %s -Properties DistinguishedName).DistinguishedName", cmdlet, winutil.Quote(identity))
	out, err := c.Shell.Run(ctx, script)
	if err != nil {
		return nil, err
	}
	return directory.Parse(out)
}

func (c *IdentityCollector) getenv(key string) string {
	if c.Getenv == nil {
		return os.Getenv(key)
	}
	return c.Getenv(key)
}

func (c *IdentityCollector) computerName() (string, error) {
	if name := c.getenv("COMPUTERNAME"); name != "" {
		return name, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to determine computer name: %w", err)
	}
	return name, nil
}

func (c *IdentityCollector) logonName() (string, error) {
	if name := c.getenv("USERNAME"); name != "" {
		return name, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to determine logon name: %w", err)
	}
	// DOMAIN\user on Windows.
	if _, name, ok := strings.Cut(u.Username, `\`); ok {
		return name, nil
	}
	return u.Username, nil
}
