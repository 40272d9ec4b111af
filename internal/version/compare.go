package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// CheckCompatibility reports whether a config written for required can run on
// the running version.
//
// required is either a plain version or a semver constraint:
//   - "main" on either side skips the check (development builds)
//   - an empty required version always passes
//   - a plain version must match major and minor; patch may differ
//   - a constraint such as ">= 0.3, < 0.5" or "^0.4" is evaluated as written
func CheckCompatibility(running, required string) error {
	running = strings.TrimPrefix(strings.TrimSpace(running), "v")
	required = strings.TrimSpace(required)

	if required == "" || running == "main" || strings.TrimPrefix(required, "v") == "main" {
		return nil
	}

	runningSemver, err := semver.NewVersion(running)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid running version '%s'", running)
	}

	if requiredSemver, err := semver.NewVersion(strings.TrimPrefix(required, "v")); err == nil {
		return checkSameMinor(runningSemver, requiredSemver)
	}

	constraint, err := semver.NewConstraint(required)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid version requirement '%s'", required)
	}

	if ok, reasons := constraint.Validate(runningSemver); !ok {
		msg := make([]string, 0, len(reasons))
		for _, r := range reasons {
			msg = append(msg, r.Error())
		}

		return errors.Newf(errors.ErrCodeVersionMismatch, "version %s does not satisfy '%s': %s",
			runningSemver, required, strings.Join(msg, "; "))
	}

	return nil
}

func checkSameMinor(running, required *semver.Version) error {
	if running.Major() != required.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: running %d.x.x but config requires %d.x.x",
			running.Major(), required.Major())
	}

	if running.Minor() != required.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: running %d.%d.x but config requires %d.%d.x",
			running.Major(), running.Minor(), required.Major(), required.Minor())
	}

	return nil
}
