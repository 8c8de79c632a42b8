package novaagent

import "fmt"

type pageSnapshot struct {
	URL   string
	Title string
	Tree  string
}

// snapshotScript renders the visible page as an indented text tree. Every
// interactive element gets a numeric id, mirrored into a data-agent-id
// attribute so actions can target it by selector.
const snapshotScript = `() => {
	let idCounter = 1;
	const interactiveTags = new Set(['a', 'button', 'input', 'textarea', 'select']);
	const skipTags = new Set(['script', 'style', 'svg', 'path', 'noscript', 'iframe']);

	document.querySelectorAll('[data-agent-id]').forEach(el => el.removeAttribute('data-agent-id'));

	function clean(text) {
		if (!text) return '';
		const t = text.replace(/\s+/g, ' ').trim();
		return t.length > 100 ? t.slice(0, 100) + '...' : t;
	}

	function visible(el) {
		if (!el.getBoundingClientRect) return false;
		if (el.getAttribute('aria-hidden') === 'true') return false;
		const r = el.getBoundingClientRect();
		const st = window.getComputedStyle(el);
		const inViewport = r.top < window.innerHeight && r.bottom > 0 &&
			r.left < window.innerWidth && r.right > 0;
		return r.width > 0 && r.height > 0 && st.visibility !== 'hidden' &&
			st.display !== 'none' && inViewport;
	}

	function interactive(el) {
		const tag = el.tagName.toLowerCase();
		const role = (el.getAttribute('role') || '').toLowerCase();
		return interactiveTags.has(tag) ||
			['button', 'link', 'checkbox', 'textbox', 'combobox', 'option', 'menuitem', 'tab'].includes(role) ||
			el.onclick != null;
	}

	function label(el) {
		return clean(el.innerText || el.textContent || '') ||
			clean(el.getAttribute('aria-label') || '') ||
			clean(el.getAttribute('placeholder') || '') ||
			clean(el.getAttribute('title') || '');
	}

	function walk(node, depth) {
		if (!node || depth > 20) return '';

		if (node.nodeType === Node.TEXT_NODE) {
			const t = clean(node.textContent);
			return t.length > 2 ? '  '.repeat(depth) + t + '\n' : '';
		}
		if (node.nodeType !== Node.ELEMENT_NODE) return '';

		const el = node;
		const tag = el.tagName.toLowerCase();
		if (skipTags.has(tag) || !visible(el)) return '';

		let out = '';
		if (interactive(el)) {
			const id = idCounter++;
			el.setAttribute('data-agent-id', String(id));
			const lbl = label(el);
			out += '  '.repeat(depth) + '[' + id + '] <' + tag + '>' +
				(lbl ? ' ' + lbl : '') + '\n';
		} else if (/^h[1-5]$/.test(tag)) {
			out += '  '.repeat(depth) + '<' + tag + '> ' + clean(el.innerText) + '\n';
		}

		for (const child of el.childNodes) {
			out += walk(child, depth + 1);
		}
		return out;
	}

	return walk(document.body, 0);
}`

func (s *session) snapshot() (*pageSnapshot, error) {
	result, err := s.page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("page evaluation failed: %w", err)
	}

	tree, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("expected string snapshot, got %T", result)
	}

	title, _ := s.page.Title()

	return &pageSnapshot{
		URL:   s.page.URL(),
		Title: title,
		Tree:  tree,
	}, nil
}
