package manifest

import "fmt"

// Template returns the contents of a fresh cpm.toml for a new executable package
func Template(name string) string {
	return fmt.Sprintf(`[package]
name = %q
version = "0.1.0"
# kind = "exe"
# src_folder = "src"
# include_folder = "include"
# additional_compiler_flags = [...]
# additional_linker_flags = [...]
# enable_pthread_library = false
# enable_math_library = false
# disable_std_library = false
`, name)
}

// MainTemplate is the source file created by `cpm init`
const MainTemplate = `#include <stdio.h>

int main(void) {
    printf("Hello, world!\n");
    return 0;
}
`
