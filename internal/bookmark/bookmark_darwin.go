//go:build darwin && cgo

package bookmark

/*
#cgo LDFLAGS: -framework CoreFoundation

#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>

// create_bookmark returns a malloc'd copy of the security-scoped bookmark
// for path, or NULL on failure. On failure *err_msg may carry a malloc'd
// description. The caller frees both.
static void *create_bookmark(const char *path, size_t *out_len, char **err_msg) {
	*out_len = 0;
	*err_msg = NULL;

	CFStringRef str = CFStringCreateWithCString(NULL, path, kCFStringEncodingUTF8);
	if (str == NULL) {
		return NULL;
	}
	CFURLRef url = CFURLCreateWithFileSystemPath(NULL, str, kCFURLPOSIXPathStyle, true);
	CFRelease(str);
	if (url == NULL) {
		return NULL;
	}

	CFErrorRef err = NULL;
	CFDataRef data = CFURLCreateBookmarkData(NULL, url,
		kCFURLBookmarkCreationWithSecurityScope, NULL, NULL, &err);
	CFRelease(url);

	if (data == NULL) {
		if (err != NULL) {
			CFStringRef desc = CFErrorCopyDescription(err);
			if (desc != NULL) {
				CFIndex cap = CFStringGetMaximumSizeForEncoding(
					CFStringGetLength(desc), kCFStringEncodingUTF8) + 1;
				*err_msg = malloc(cap);
				if (*err_msg != NULL &&
					!CFStringGetCString(desc, *err_msg, cap, kCFStringEncodingUTF8)) {
					free(*err_msg);
					*err_msg = NULL;
				}
				CFRelease(desc);
			}
			CFRelease(err);
		}
		return NULL;
	}

	CFIndex n = CFDataGetLength(data);
	void *buf = malloc(n > 0 ? (size_t)n : 1);
	if (buf != NULL) {
		CFDataGetBytes(data, CFRangeMake(0, n), buf);
		*out_len = (size_t)n;
	}
	CFRelease(data);
	return buf;
}
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"
)

// securityScopedIssuer mints bookmarks with security scope so the wallpaper
// system can open the folder from inside its sandbox.
type securityScopedIssuer struct{}

func platformIssuer() Issuer {
	return securityScopedIssuer{}
}

func (securityScopedIssuer) Issue(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var (
		length C.size_t
		cerr   *C.char
	)
	buf := C.create_bookmark(cpath, &length, &cerr)
	if cerr != nil {
		defer C.free(unsafe.Pointer(cerr))
	}
	if buf == nil {
		if cerr != nil {
			return nil, fmt.Errorf("create bookmark for %s: %s", path, C.GoString(cerr))
		}
		return nil, fmt.Errorf("create bookmark for %s", path)
	}
	defer C.free(buf)

	return C.GoBytes(buf, C.int(length)), nil
}
