// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	NotLoggedInId Id = iota + 1
	ManifestInvalidId
	DescriptionMissingId
	RequiredFilesMissingId
	ArtifactTooLargeId
	ArchiveFailedId
	SlotRequestFailedId
	UploadFailedId
	FinalizeFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a Markdown help page shown after a failure.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the page with the given glamour style ("dark", "light", "auto", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var extra strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extra.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extra.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			extra.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(string(i.mdMsg)+extra.String(), stylePath)
}

var (
	render = glamour.Render

	notLoggedInIssue = &Issue{
		id: NotLoggedInId,
		mdMsg: `
# Not logged in!

Publishing needs an API key and none was found.

## We look for a key in this order:
1. The PIPECTL_API_KEY environment variable
2. Your system keyring
3. The credentials.toml file in the pipectl config directory

## Things you can try:
~~~
$ pipectl login --api-key <your key>
~~~`,
		docLinks: []HttpLink{"https://docs.screenpi.pe/plugins"},
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# package.json is not publishable!

The manifest must contain a non-empty **name** and a semantic **version**.

## Example:
~~~json
{
  "name": "my-pipe",
  "version": "1.0.0"
}
~~~

## Things you can try:
- Run pipectl from the project root (or pass --dir)
- Check that package.json is valid JSON`,
	}

	descriptionMissingIssue = &Issue{
		id: DescriptionMissingId,
		mdMsg: `
# Description is required!

The store page of a pipe is built from its README.md, so publishing
requires a non-empty README.md in the project root.

## Things you can try:
- Create README.md describing what your pipe does
- Make sure the file is not empty or whitespace only`,
	}

	requiredFilesMissingIssue = &Issue{
		id: RequiredFilesMissingId,
		mdMsg: `
# Required files not found!

This looks like a Next.js project (a next.config file exists), so the
built application must be published: **package.json** and the **.next**
build output are both required.

## Things you can try:
~~~
$ npm run build
~~~

- Make sure you are in the correct directory`,
	}

	artifactTooLargeIssue = &Issue{
		id: ArtifactTooLargeId,
		mdMsg: `
# Package is too large!

The archive exceeds the maximum size accepted by the store.

## Things you can try:
- Add large generated files or datasets to .gitignore
- Remove bundled binaries that can be downloaded at runtime
- For Next.js projects, check what ended up in .next`,
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Could not create the package archive!

A file could not be read while the archive was written, or the archive
file could not be created.

## Things you can try:
- Check file permissions in the project directory
- Remove a leftover <name>-<version>.zip from a previous run
- Make sure no build is writing to the project while publishing`,
	}

	slotRequestFailedIssue = &Issue{
		id: SlotRequestFailedId,
		mdMsg: `
# The store refused the publish request!

The server did not grant an upload slot. The message above comes from
the server.

## Common causes:
- The name is taken by another developer
- This version was already published
- Your API key expired

## Things you can try:
- Bump the version in package.json
- Log in again with pipectl login`,
	}

	uploadFailedIssue = &Issue{
		id: UploadFailedId,
		mdMsg: `
# Upload failed!

The archive could not be transferred to storage, even after retrying.

## Things you can try:
- Check your network connection and retry
- Increase upload.timeout in your config for slow connections`,
	}

	finalizeFailedIssue = &Issue{
		id: FinalizeFailedId,
		mdMsg: `
# Could not finalize the publish!

The archive was uploaded but the store did not register it.

## Things you can try:
- Retry the publish; the previous upload is not reused
- Contact support with the request id shown in verbose output`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check config.cue for syntax errors
- Show the effective configuration:
~~~
$ pipectl config show
~~~`,
	}

	issues = map[Id]*Issue{
		notLoggedInIssue.Id():          notLoggedInIssue,
		manifestInvalidIssue.Id():      manifestInvalidIssue,
		descriptionMissingIssue.Id():   descriptionMissingIssue,
		requiredFilesMissingIssue.Id(): requiredFilesMissingIssue,
		artifactTooLargeIssue.Id():     artifactTooLargeIssue,
		archiveFailedIssue.Id():        archiveFailedIssue,
		slotRequestFailedIssue.Id():    slotRequestFailedIssue,
		uploadFailedIssue.Id():         uploadFailedIssue,
		finalizeFailedIssue.Id():       finalizeFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
