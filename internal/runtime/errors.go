package runtime

import "fmt"

func errAlreadyLoaded(name string) error {
	return fmt.Errorf("plugin %q is already loaded", name)
}

func errNameMismatch(wanted, got string) error {
	return fmt.Errorf("reload target %q but shared library declares name %q", wanted, got)
}
