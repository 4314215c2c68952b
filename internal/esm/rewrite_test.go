package esm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/codemod/internal/specifier"
)

func newRewriter(t *testing.T) (*Rewriter, string) {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"utils/index.ts", "models/index.ts", "models/user.ts"} {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("export {};\n"), 0o644))
	}
	resolver, err := specifier.NewResolver(specifier.Options{SourceExt: ".ts", TargetExt: ".js", EntryName: "index"})
	require.NoError(t, err)
	return New(resolver), root
}

func TestRewrite_StaticForms(t *testing.T) {
	rw, root := newRewriter(t)

	src := `import './polyfill';
import def from './def';
import def2, { a, b as c } from "./named";
import * as ns from '../up/ns';
import type { T } from './types';
import {
  one,
  two,
} from './multi';
export * from './reexport';
export * as grouped from './grouped';
export { x as y } from './models';
export type { U } from './utils/index';
`
	want := `import './polyfill.js';
import def from './def.js';
import def2, { a, b as c } from "./named.js";
import * as ns from '../up/ns.js';
import type { T } from './types.js';
import {
  one,
  two,
} from './multi.js';
export * from './reexport.js';
export * as grouped from './grouped.js';
export { x as y } from './models/index.js';
export type { U } from './utils/index.js';
`
	res := rw.Rewrite(src, root)
	assert.Equal(t, want, res.Content)
	assert.Len(t, res.Changes, 10)
	for _, c := range res.Changes {
		assert.Equal(t, Static, c.Form)
	}
}

func TestRewrite_DynamicImports(t *testing.T) {
	rw, root := newRewriter(t)

	src := "const a = await import('./lazy');\n" +
		"const b = import(\"./utils\");\n" +
		"const c = import( './spaced' , { with: { type: 'json' } });\n" +
		"const d = import(name);\n" +
		"const e = import('pkg');\n"
	want := "const a = await import('./lazy.js');\n" +
		"const b = import(\"./utils/index.js\");\n" +
		"const c = import( './spaced.js' , { with: { type: 'json' } });\n" +
		"const d = import(name);\n" +
		"const e = import('pkg');\n"

	res := rw.Rewrite(src, root)
	assert.Equal(t, want, res.Content)
	require.Len(t, res.Changes, 3)
	assert.Equal(t, Dynamic, res.Changes[0].Form)
	assert.Equal(t, 1, res.Changes[0].Line)
	assert.Equal(t, "./utils/index.js", res.Changes[1].To)
}

func TestRewrite_LeavesOtherSpecifiersAlone(t *testing.T) {
	rw, root := newRewriter(t)

	src := `import React from 'react';
import { z } from '@scope/pkg';
import done from './done.js';
// import skipped from './in-comment';
const s = "import x from './in-string'";
const tpl = ` + "`export * from './in-template'`" + `;
const meta = import.meta.url;
loader.import('./method');
export const value = 1;
export default './not-a-module';
`
	res := rw.Rewrite(src, root)
	assert.Equal(t, src, res.Content)
	assert.Empty(t, res.Changes)
	assert.False(t, res.Modified())
}

func TestRewrite_ExportBlockWithoutSemicolon(t *testing.T) {
	rw, root := newRewriter(t)

	src := "export { local }\nimport x from './x'\n"
	res := rw.Rewrite(src, root)

	assert.Equal(t, "export { local }\nimport x from './x.js'\n", res.Content)
	assert.Len(t, res.Changes, 1)
}

func TestRewrite_Idempotent(t *testing.T) {
	rw, root := newRewriter(t)

	src := "import a from './a';\nconst b = import('./models');\n"
	first := rw.Rewrite(src, root)
	require.True(t, first.Modified())

	second := rw.Rewrite(first.Content, root)
	assert.False(t, second.Modified())
	assert.Equal(t, first.Content, second.Content)
}

func TestRewrite_DynamicImportInTemplateSubstitution(t *testing.T) {
	rw, root := newRewriter(t)

	src := "const m = `${await import('./x')}`;\n"
	res := rw.Rewrite(src, root)
	assert.Equal(t, "const m = `${await import('./x.js')}`;\n", res.Content)
}

func TestRewrite_JSXClosingTagBeforeImport(t *testing.T) {
	rw, root := newRewriter(t)

	src := "const link = <a href=\"/\">home</a>; const Page = lazy(() => import('./Page'));\n"
	res := rw.Rewrite(src, root)
	assert.Equal(t, "const link = <a href=\"/\">home</a>; const Page = lazy(() => import('./Page.js'));\n", res.Content)
}
