// SPDX-License-Identifier: MPL-2.0

// Package options parses a command handler's own flags into a typed options
// record.
//
// A Parser[T] is built fluently: each option declaration names a flag spec and
// an assign callback that writes one field of T. Post-parse validators express
// constraints that only hold across several flags. Parse and Validate never
// return on failure: they print the error and the full help text on the
// diagnostic stream and exit 1.
//
//	type buildOpts struct {
//		Push bool
//		Tag  string
//	}
//
//	p := options.New[buildOpts]("build", args).
//		AddOption("-p, --push", func(o *buildOpts, _ string) error { o.Push = true; return nil }, "Push after build").
//		AddOption("--tag=TAG", func(o *buildOpts, v string) error { o.Tag = v; return nil }, "Image tag")
//	p.AddValidator(func(o *buildOpts) error {
//		if o.Push && o.Tag == "" {
//			return errors.New("--push requires --tag")
//		}
//		return nil
//	})
//	opts := p.Parse().Validate().Options()
package options
