/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package errors

// GETFILE protocol error codes, reserved block 6400-6499 (MinPkgGetfile).
const (
	ErrorGetfileInvalidHeader CodeError = iota + MinPkgGetfile
	ErrorGetfileTruncatedBody
	ErrorGetfileResolveFailed
	ErrorGetfileBindFailed
	ErrorGetfileListenFailed
	ErrorGetfileAcceptFailed
	ErrorGetfileSourceFailed
	ErrorGetfileSinkFailed
	ErrorGetfileConfigInvalid
)

func init() {
	RegisterIdFctMessage(ErrorGetfileInvalidHeader, getfileMessage)
}

func getfileMessage(code CodeError) (message string) {
	switch code {
	case ErrorGetfileInvalidHeader:
		return "getfile: malformed request or response header"
	case ErrorGetfileTruncatedBody:
		return "getfile: body ended before the declared size was reached"
	case ErrorGetfileResolveFailed:
		return "getfile: could not resolve listen address"
	case ErrorGetfileBindFailed:
		return "getfile: could not bind listening socket"
	case ErrorGetfileListenFailed:
		return "getfile: could not start listening"
	case ErrorGetfileAcceptFailed:
		return "getfile: accept failed"
	case ErrorGetfileSourceFailed:
		return "getfile: content source failed to serve the requested path"
	case ErrorGetfileSinkFailed:
		return "getfile: content sink failed to accept the transfer"
	case ErrorGetfileConfigInvalid:
		return "getfile: configuration failed validation"
	}

	return ""
}
